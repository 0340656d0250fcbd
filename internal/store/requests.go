package store

import (
	"context"
	"encoding/json"
)

// BeginActionRequest claims the (table, user, request) key by inserting a
// pending row. Returns the already-existing record when the key was claimed
// before, with inserted=false; the caller then replays or reports pending.
func (s *Store) BeginActionRequest(ctx context.Context, q dbtx, tableID, userID, requestID, kind string) (*ActionRequest, bool, error) {
	tag, err := q.Exec(ctx, `
		INSERT INTO action_requests (table_id, user_id, request_id, kind, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (table_id, user_id, request_id) DO NOTHING`,
		tableID, userID, requestID, kind, RequestPending)
	if err != nil {
		return nil, false, err
	}
	if tag.RowsAffected() == 1 {
		return &ActionRequest{TableID: tableID, UserID: userID, RequestID: requestID, Kind: kind, Status: RequestPending}, true, nil
	}
	existing, err := getActionRequest(ctx, q, tableID, userID, requestID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *Store) GetActionRequest(ctx context.Context, tableID, userID, requestID string) (*ActionRequest, error) {
	return getActionRequest(ctx, s.Pool, tableID, userID, requestID)
}

func getActionRequest(ctx context.Context, q dbtx, tableID, userID, requestID string) (*ActionRequest, error) {
	row := q.QueryRow(ctx, `
		SELECT table_id, user_id, request_id, kind, status, response, created_at
		FROM action_requests
		WHERE table_id = $1 AND user_id = $2 AND request_id = $3`,
		tableID, userID, requestID)
	var r ActionRequest
	if err := row.Scan(&r.TableID, &r.UserID, &r.RequestID, &r.Kind, &r.Status, &r.Response, &r.CreatedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &r, nil
}

// CompleteActionRequest stores the response and flips the record to done, in
// the same transaction that committed the state change it describes.
func (s *Store) CompleteActionRequest(ctx context.Context, q dbtx, tableID, userID, requestID string, response any) error {
	blob, err := json.Marshal(response)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		UPDATE action_requests
		SET status = $4, response = $5
		WHERE table_id = $1 AND user_id = $2 AND request_id = $3`,
		tableID, userID, requestID, RequestDone, blob)
	return err
}

// DeleteActionRequest releases a claimed key after the operation failed
// without committing, so a retry with the same request id can run.
func (s *Store) DeleteActionRequest(ctx context.Context, tableID, userID, requestID string) error {
	_, err := s.Pool.Exec(ctx, `
		DELETE FROM action_requests
		WHERE table_id = $1 AND user_id = $2 AND request_id = $3 AND status = $4`,
		tableID, userID, requestID, RequestPending)
	return err
}
