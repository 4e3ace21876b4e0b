package deploy

// Phase is a step in the lifecycle of one deployment.
type Phase string

const (
	PhaseStart         Phase = "START"
	PhaseFactoryBuilt  Phase = "FACTORY_BUILT"
	PhaseTxSubmitted   Phase = "TX_SUBMITTED"
	PhaseConfirmed     Phase = "CONFIRMED"
	PhaseLedgerWritten Phase = "LEDGER_WRITTEN"
	PhaseDone          Phase = "DONE"
	PhaseFailed        Phase = "FAILED"
)
