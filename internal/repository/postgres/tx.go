package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
)

// interactionTx implements repository.InteractionTx on an open transaction
type interactionTx struct {
	tx    *sql.Tx
	store *Store
}

func (t *interactionTx) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return getCustomer(ctx, t.tx, id)
}

func (t *interactionTx) InsertInteraction(ctx context.Context, in *domain.EnrichedInteraction) (*domain.Interaction, error) {
	metadata := in.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	deviceJSON, err := nullJSON(in.Device, in.Device == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal device: %w", err)
	}
	geoJSON, err := nullJSON(in.Geo, in.Geo == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal geo: %w", err)
	}

	interaction := &domain.Interaction{
		ID:             t.store.newID(),
		CustomerID:     in.CustomerID,
		OrganizationID: in.OrganizationID,
		Timestamp:      in.Timestamp.UTC(),
		Channel:        in.Channel,
		EventType:      in.EventType,
		Content:        in.Content,
		Metadata:       in.Metadata,
		Segment:        in.Segment,
		Device:         in.Device,
		Geo:            in.Geo,
		CreatedAt:      t.store.now().UTC(),
	}

	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO interactions (
			id, customer_id, organization_id, occurred_at, channel, event_type, content,
			metadata, device, geo, segment, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		interaction.ID,
		interaction.CustomerID,
		interaction.OrganizationID,
		interaction.Timestamp,
		string(interaction.Channel),
		interaction.EventType,
		nullString(interaction.Content),
		string(metadataJSON),
		deviceJSON,
		geoJSON,
		nullString(interaction.Segment),
		interaction.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert interaction: %w", err)
	}

	return interaction, nil
}

// TouchCustomer advances the counter in place so concurrent ingestions never lose an increment
func (t *interactionTx) TouchCustomer(ctx context.Context, customerID, organizationID string, seenAt time.Time) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE customers SET
			last_seen_at = $1,
			interaction_count = interaction_count + 1,
			updated_at = $2
		WHERE id = $3 AND organization_id = $4`,
		seenAt.UTC(), t.store.now().UTC(), customerID, organizationID)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullJSON(v any, isNil bool) (sql.NullString, error) {
	if isNil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
