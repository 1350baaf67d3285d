package domain

import (
	"bytes"         // Body buffers
	"encoding/json" // JSON codec
	"time"          // Timeouts and clocks
)

// Default and maximum page sizes for list endpoints
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PageQuery carries pagination for list endpoints
type PageQuery struct {
	Page  int `json:"page,omitempty" form:"page"`
	Limit int `json:"limit,omitempty" form:"limit"`
}

// Normalize clamps page and limit into their valid ranges
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return q
}

// Offset is the number of rows skipped before this page
func (q PageQuery) Offset() int {
	n := q.Normalize()
	return (n.Page - 1) * n.Limit
}

// PaymentFilter narrows a payment listing
type PaymentFilter struct {
	PageQuery
	Status     string `json:"status,omitempty" form:"status"`
	CustomerID string `json:"customer_id,omitempty" form:"customer_id"`
	Method     string `json:"payment_method,omitempty" form:"payment_method"`
}

// AuditFilter narrows an audit log query
type AuditFilter struct {
	PageQuery
	Action   string    `json:"action,omitempty" form:"action"`
	Resource string    `json:"resource,omitempty" form:"resource"`
	ActorID  string    `json:"actor_id,omitempty" form:"actor_id"`
	From     time.Time `json:"from,omitzero" form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To       time.Time `json:"to,omitzero" form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Page is the one list envelope callers see. The backend sends either
// {"data": [...], "total": n} or a bare JSON array; both decode here.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}

// UnmarshalJSON accepts both list shapes
func (p *Page[T]) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		p.Data = items
		p.Total = int64(len(items))
		return nil
	}
	var env struct {
		Data  []T    `json:"data"`
		Items []T    `json:"items"`
		Total *int64 `json:"total"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	p.Data = env.Data
	if p.Data == nil {
		p.Data = env.Items
	}
	if p.Data == nil {
		p.Data = []T{}
	}
	if env.Total != nil {
		p.Total = *env.Total
	} else {
		p.Total = int64(len(p.Data))
	}
	return nil
}
