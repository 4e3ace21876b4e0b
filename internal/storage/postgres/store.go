package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stableDeploy/internal/model"
)

//go:embed schema.sql
var schema string

// Store provides Postgres persistence for deployment records and the registry.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// PutRecords implements storage.Sink.
func (s *Store) PutRecords(ctx context.Context, records []model.DeploymentRecord) error {
	return s.UpsertDeployments(ctx, records)
}

// UpsertDeployments inserts deployment records, keyed by chain and tx hash.
func (s *Store) UpsertDeployments(ctx context.Context, records []model.DeploymentRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO deployments (
				run_id, chain_id, kind, step, contract, ledger_key, address, target, method,
				tx_hash, block_number, gas_used, deployer, block_time, confirmed_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
			ON CONFLICT (chain_id, tx_hash)
			DO UPDATE SET
				run_id = EXCLUDED.run_id,
				block_number = EXCLUDED.block_number,
				gas_used = EXCLUDED.gas_used,
				block_time = EXCLUDED.block_time,
				confirmed_at = EXCLUDED.confirmed_at
		`,
			r.RunID,
			int64(r.ChainID),
			r.Kind,
			r.Step,
			r.Contract,
			r.LedgerKey,
			r.Address,
			r.Target,
			r.Method,
			r.TxHash,
			int64(r.BlockNumber),
			int64(r.GasUsed),
			r.Deployer,
			int64(r.BlockTime),
			r.ConfirmedAt,
		)
	}
	return s.execBatch(ctx, batch, len(records))
}

// ListDeployments returns the records of chainID, oldest first.
func (s *Store) ListDeployments(ctx context.Context, chainID uint64) ([]model.DeploymentRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, chain_id, kind, step, contract, ledger_key, address, target, method,
			tx_hash, block_number, gas_used, deployer, block_time, confirmed_at
		FROM deployments
		WHERE chain_id = $1
		ORDER BY block_number, created_at
	`, int64(chainID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DeploymentRecord
	for rows.Next() {
		var (
			r                                model.DeploymentRecord
			chain, block, gasUsed, blockTime int64
		)
		if err := rows.Scan(&r.RunID, &chain, &r.Kind, &r.Step, &r.Contract, &r.LedgerKey, &r.Address,
			&r.Target, &r.Method, &r.TxHash, &block, &gasUsed, &r.Deployer, &blockTime, &r.ConfirmedAt); err != nil {
			return nil, err
		}
		r.ChainID = uint64(chain)
		r.BlockNumber = uint64(block)
		r.GasUsed = uint64(gasUsed)
		r.BlockTime = uint64(blockTime)
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertTokens inserts or updates registry tokens.
func (s *Store) UpsertTokens(ctx context.Context, tokens []model.RegistryToken) error {
	if len(tokens) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range tokens {
		batch.Queue(`
			INSERT INTO registry_tokens (chain_id, symbol, address, decimals, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (chain_id, symbol)
			DO UPDATE SET
				address = EXCLUDED.address,
				decimals = EXCLUDED.decimals,
				updated_at = now()
		`, int64(t.ChainID), t.Symbol, t.Address, int16(t.Decimals))
	}
	return s.execBatch(ctx, batch, len(tokens))
}

// UpsertPools inserts or updates registry pools.
func (s *Store) UpsertPools(ctx context.Context, pools []model.RegistryPool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range pools {
		batch.Queue(`
			INSERT INTO registry_pools (
				chain_id, name, address, pool_type, tag, code, lp_token, lp_symbol, coins, fee, dao_fee, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
			ON CONFLICT (chain_id, name)
			DO UPDATE SET
				address = EXCLUDED.address,
				pool_type = EXCLUDED.pool_type,
				tag = EXCLUDED.tag,
				code = EXCLUDED.code,
				lp_token = EXCLUDED.lp_token,
				lp_symbol = EXCLUDED.lp_symbol,
				coins = EXCLUDED.coins,
				fee = EXCLUDED.fee,
				dao_fee = EXCLUDED.dao_fee,
				updated_at = now()
		`,
			int64(p.ChainID),
			p.Name,
			p.Address,
			int16(p.PoolType),
			p.Tag,
			p.Code,
			p.LPToken,
			p.LPSymbol,
			p.Coins,
			p.Fee,
			p.DAOFee,
		)
	}
	return s.execBatch(ctx, batch, len(pools))
}

// UpsertContracts inserts or updates registry contract addresses.
func (s *Store) UpsertContracts(ctx context.Context, contracts []model.RegistryContract) error {
	if len(contracts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range contracts {
		batch.Queue(`
			INSERT INTO registry_contracts (chain_id, name, address, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (chain_id, name)
			DO UPDATE SET address = EXCLUDED.address, updated_at = now()
		`, int64(c.ChainID), c.Name, c.Address)
	}
	return s.execBatch(ctx, batch, len(contracts))
}

func (s *Store) execBatch(ctx context.Context, batch *pgx.Batch, n int) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
