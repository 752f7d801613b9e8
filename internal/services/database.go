package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	summaryRowKey   = "SUMMARY"
	txnRowKeyPrefix = "TXN_"
	batchSize       = 100
)

// ErrSnapshotNotFound is returned by Load when no snapshot has the given name.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is a saved session: its settings and ordered transactions.
type Snapshot struct {
	Name         string
	Settings     models.Settings
	Transactions []models.Transaction
	Revision     uint64
	SavedAt      time.Time
}

type summaryEntity struct {
	PartitionKey string
	RowKey       string
	CompanyName  string
	Language     string
	Industry     string
	Revision     int64
	Count        int
	SavedAt      string
}

type transactionEntity struct {
	PartitionKey string
	RowKey       string
	Position     int
	ID           string
	Date         string
	Description  string
	Category     string
	// Amount is stored as a string to keep it exact.
	Amount string
}

// SnapshotService persists session snapshots in Azure Table Storage. One
// partition holds one snapshot.
type SnapshotService struct {
	serviceClient *aztables.ServiceClient
	table         string
	log           zerolog.Logger
}

// NewSnapshotService creates a SnapshotService and ensures the table exists.
func NewSnapshotService(ctx context.Context, tableURL, table string, log zerolog.Logger) (*SnapshotService, error) {
	if tableURL == "" {
		return nil, fmt.Errorf("table service URL is required")
	}
	log = log.With().Str("service", "snapshot").Logger()

	var client *aztables.ServiceClient

	// Check if running locally with Azurite (http endpoint)
	if isLocal(tableURL) {
		log.Info().Msg("using Azurite credentials for snapshot service")
		name, key := getAzuriteCredentials()
		cred, err := aztables.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		cred, err := newDefaultAzureCredential(log)
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = aztables.NewServiceClient(tableURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	svc := &SnapshotService{serviceClient: client, table: table, log: log}
	if err := svc.createTable(ctx); err != nil {
		return nil, err
	}

	log.Info().Str("table_url", tableURL).Str("table", table).Msg("snapshot service initialized successfully")
	return svc, nil
}

func (s *SnapshotService) createTable(ctx context.Context) error {
	_, err := s.serviceClient.CreateTable(ctx, s.table, nil)
	if err != nil {
		var azErr *azcore.ResponseError
		if errors.As(err, &azErr) && azErr.ErrorCode == "TableAlreadyExists" {
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// Save writes snap under snap.Name, replacing any earlier snapshot of that
// name. Rows of transactions no longer present are deleted.
func (s *SnapshotService) Save(ctx context.Context, snap Snapshot) error {
	if err := ValidateSnapshotName(snap.Name); err != nil {
		return err
	}
	client := s.serviceClient.NewClient(s.table)

	existing, err := s.listRowKeys(ctx, client, snap.Name)
	if err != nil {
		return err
	}

	actions, err := snapshotActions(snap, existing)
	if err != nil {
		return err
	}

	for _, chunk := range chunkActions(actions, batchSize) {
		if _, err := client.SubmitTransaction(ctx, chunk, nil); err != nil {
			s.log.Error().Err(err).Str("snapshot", snap.Name).Msg("failed to submit snapshot batch")
			return fmt.Errorf("failed to submit snapshot batch: %w", err)
		}
	}

	s.log.Info().
		Str("snapshot", snap.Name).
		Int("count", len(snap.Transactions)).
		Uint64("revision", snap.Revision).
		Msg("saved snapshot")
	return nil
}

// Load reads the snapshot with the given name, transactions in saved order.
func (s *SnapshotService) Load(ctx context.Context, name string) (*Snapshot, error) {
	if err := ValidateSnapshotName(name); err != nil {
		return nil, err
	}
	client := s.serviceClient.NewClient(s.table)

	filter := fmt.Sprintf("PartitionKey eq '%s'", name)
	pager := client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})

	var entities [][]byte
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshot entities: %w", err)
		}
		entities = append(entities, resp.Entities...)
	}

	snap, err := decodeSnapshot(name, entities)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("snapshot", name).Int("count", len(snap.Transactions)).Msg("loaded snapshot")
	return snap, nil
}

func (s *SnapshotService) listRowKeys(ctx context.Context, client *aztables.Client, name string) (map[string]bool, error) {
	filter := fmt.Sprintf("PartitionKey eq '%s'", name)
	selectFields := "RowKey"
	pager := client.NewListEntitiesPager(&aztables.ListEntitiesOptions{
		Filter: &filter,
		Select: &selectFields,
	})

	keys := make(map[string]bool)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list existing entities: %w", err)
		}
		for _, entity := range resp.Entities {
			var parsed struct{ RowKey string }
			if err := json.Unmarshal(entity, &parsed); err == nil && parsed.RowKey != "" {
				keys[parsed.RowKey] = true
			}
		}
	}
	return keys, nil
}

// ValidateSnapshotName rejects names that cannot be used as a partition key.
func ValidateSnapshotName(name string) error {
	if name == "" {
		return fmt.Errorf("snapshot name is required")
	}
	if strings.ContainsAny(name, `/\#?'`) {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	return nil
}

// transactionRowKey derives a row key that is safe for any transaction id.
func transactionRowKey(id string) string {
	h := sha256.Sum256([]byte(id))
	return txnRowKeyPrefix + hex.EncodeToString(h[:])
}

// snapshotActions builds upserts for the summary and every transaction, plus
// deletes for rows in existing that are not part of snap.
func snapshotActions(snap Snapshot, existing map[string]bool) ([]aztables.TransactionAction, error) {
	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}

	var actions []aztables.TransactionAction
	add := func(kind aztables.TransactionType, entity any) error {
		b, err := json.Marshal(entity)
		if err != nil {
			return fmt.Errorf("failed to marshal entity: %w", err)
		}
		actions = append(actions, aztables.TransactionAction{ActionType: kind, Entity: b})
		return nil
	}

	summary := summaryEntity{
		PartitionKey: snap.Name,
		RowKey:       summaryRowKey,
		CompanyName:  snap.Settings.CompanyName,
		Language:     string(snap.Settings.Language),
		Industry:     string(snap.Settings.Industry),
		Revision:     int64(snap.Revision),
		Count:        len(snap.Transactions),
		SavedAt:      savedAt.Format(time.RFC3339),
	}
	if err := add(aztables.TransactionTypeInsertReplace, summary); err != nil {
		return nil, err
	}

	keep := map[string]bool{summaryRowKey: true}
	for i, t := range snap.Transactions {
		rk := transactionRowKey(t.ID)
		keep[rk] = true
		entity := transactionEntity{
			PartitionKey: snap.Name,
			RowKey:       rk,
			Position:     i,
			ID:           t.ID,
			Date:         t.Date,
			Description:  t.Description,
			Category:     string(t.Category),
			Amount:       t.Amount.String(),
		}
		if err := add(aztables.TransactionTypeInsertReplace, entity); err != nil {
			return nil, err
		}
	}

	stale := make([]string, 0)
	for rk := range existing {
		if !keep[rk] {
			stale = append(stale, rk)
		}
	}
	sort.Strings(stale)
	for _, rk := range stale {
		if err := add(aztables.TransactionTypeDelete, map[string]any{"PartitionKey": snap.Name, "RowKey": rk}); err != nil {
			return nil, err
		}
	}

	return actions, nil
}

func chunkActions(actions []aztables.TransactionAction, size int) [][]aztables.TransactionAction {
	var chunks [][]aztables.TransactionAction
	for i := 0; i < len(actions); i += size {
		end := i + size
		if end > len(actions) {
			end = len(actions)
		}
		chunks = append(chunks, actions[i:end])
	}
	return chunks
}

func decodeSnapshot(name string, entities [][]byte) (*Snapshot, error) {
	snap := &Snapshot{Name: name}
	found := false

	type positioned struct {
		pos int
		txn models.Transaction
	}
	var rows []positioned

	for _, raw := range entities {
		var head struct{ RowKey string }
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("failed to decode entity: %w", err)
		}

		switch {
		case head.RowKey == summaryRowKey:
			var e summaryEntity
			if err := json.Unmarshal(raw, &e); err != nil {
				return nil, fmt.Errorf("failed to decode snapshot summary: %w", err)
			}
			found = true
			snap.Settings = models.Settings{
				CompanyName: e.CompanyName,
				Language:    models.Language(e.Language),
				Industry:    models.Industry(e.Industry),
			}
			snap.Revision = uint64(e.Revision)
			if t, err := time.Parse(time.RFC3339, e.SavedAt); err == nil {
				snap.SavedAt = t
			}
		case strings.HasPrefix(head.RowKey, txnRowKeyPrefix):
			var e transactionEntity
			if err := json.Unmarshal(raw, &e); err != nil {
				return nil, fmt.Errorf("failed to decode transaction entity: %w", err)
			}
			amount, err := decimal.NewFromString(e.Amount)
			if err != nil {
				return nil, fmt.Errorf("invalid amount %q for transaction %s: %w", e.Amount, e.ID, err)
			}
			rows = append(rows, positioned{pos: e.Position, txn: models.Transaction{
				ID:          e.ID,
				Date:        e.Date,
				Description: e.Description,
				Category:    models.Category(e.Category),
				Amount:      amount,
			}})
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].pos < rows[j].pos })
	snap.Transactions = make([]models.Transaction, len(rows))
	for i, r := range rows {
		snap.Transactions[i] = r.txn
	}
	return snap, nil
}
