package deploy

import (
	"errors"
	"fmt"
)

var (
	ErrReverted = errors.New("transaction reverted")
	ErrNoCode   = errors.New("no code at deployed address")
	ErrUnfunded = errors.New("signer has zero balance")
	ErrPending  = errors.New("previous transaction still pending")
)

// DeploymentError reports a failed contract creation. Phase is the phase
// that could not be completed.
type DeploymentError struct {
	Contract string
	Phase    Phase
	TxHash   string
	Err      error
}

func (e *DeploymentError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("deploy %s: %s (tx %s): %v", e.Contract, e.Phase, e.TxHash, e.Err)
	}
	return fmt.Sprintf("deploy %s: %s: %v", e.Contract, e.Phase, e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

// LinkageError reports a failed post-deployment call.
type LinkageError struct {
	Contract string
	Target   string
	Method   string
	TxHash   string
	Err      error
}

func (e *LinkageError) Error() string {
	msg := fmt.Sprintf("link %s.%s at %s", e.Contract, e.Method, e.Target)
	if e.TxHash != "" {
		msg += " (tx " + e.TxHash + ")"
	}
	return msg + ": " + e.Err.Error()
}

func (e *LinkageError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a missing or malformed input, raised before any
// transaction is sent.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Key, e.Reason)
}

// AlreadyDeployedError is returned instead of repeating a confirmed step.
// Address is the ledger address of a deployment, or the called contract of
// a link.
type AlreadyDeployedError struct {
	Key     string
	Address string
}

func (e *AlreadyDeployedError) Error() string {
	return fmt.Sprintf("%s already done at %s", e.Key, e.Address)
}
