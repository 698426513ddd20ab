package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apillon/apillon-go"
)

// IPNSModule manages the IPNS records of one bucket.
type IPNSModule struct {
	apillon.Module
	bucketUUID string
}

// IPNS is a mutable IPNS name pointing at a CID.
type IPNS struct {
	apillon.Entity `json:"-"`

	BucketUUID  string `json:"bucketUuid,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IPNSName    string `json:"ipnsName,omitempty"`
	IPNSValue   string `json:"ipnsValue,omitempty"`
	Link        string `json:"link,omitempty"`
}

// CreateIPNSRequest is the body of IPNSModule.Create. When CID is set the
// record is published right away.
type CreateIPNSRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty" validate:"max=1000"`
	CID         string `json:"cid,omitempty" validate:"omitempty,cid"`
}

type publishRequest struct {
	CID string `json:"cid" validate:"cid"`
}

// List returns one page of IPNS records.
func (m *IPNSModule) List(ctx context.Context, filter *IPNSFilter) (*apillon.List[*IPNS], error) {
	var raw apillon.RawList
	if err := m.Client().Get(ctx, apillon.BuildURL(m.APIPrefix(), filter, nil), &raw); err != nil {
		return nil, fmt.Errorf("list ipns of bucket %s: %w", m.bucketUUID, err)
	}
	return apillon.DecodeList(raw, m.decode)
}

// Create creates an IPNS record.
func (m *IPNSModule) Create(ctx context.Context, req CreateIPNSRequest) (*IPNS, error) {
	if err := apillon.ValidateRequest(req); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := m.Client().Post(ctx, m.APIPrefix(), req, &raw); err != nil {
		return nil, fmt.Errorf("create ipns: %w", err)
	}
	return m.decode(raw)
}

// IPNS returns a handle to an IPNS record without fetching it.
func (m *IPNSModule) IPNS(uuid string) *IPNS {
	return &IPNS{
		Entity:     apillon.NewEntity(m.Client(), uuid, m.APIPrefix()+"/"+uuid),
		BucketUUID: m.bucketUUID,
	}
}

func (m *IPNSModule) decode(raw json.RawMessage) (*IPNS, error) {
	id, err := apillon.DecodeID(raw, "ipnsUuid")
	if err != nil {
		return nil, err
	}
	rec := m.IPNS(id)
	if err := apillon.PopulateJSON(rec, raw); err != nil {
		return nil, err
	}
	return rec, nil
}

// MarshalJSON includes the record uuid.
func (i *IPNS) MarshalJSON() ([]byte, error) {
	type plain IPNS
	return apillon.MarshalEntity("ipnsUuid", i.UUID(), (*plain)(i))
}

// Get fetches the record. The published value always takes the server's value.
func (i *IPNS) Get(ctx context.Context) (*IPNS, error) {
	var raw json.RawMessage
	if err := i.Client().Get(ctx, i.APIPrefix(), &raw); err != nil {
		return nil, fmt.Errorf("get ipns %s: %w", i.UUID(), err)
	}
	if err := i.refresh(raw); err != nil {
		return nil, err
	}
	return i, nil
}

// Publish points the record at cid.
func (i *IPNS) Publish(ctx context.Context, cid string) (*IPNS, error) {
	req := publishRequest{CID: cid}
	if err := apillon.ValidateRequest(req); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := i.Client().Post(ctx, i.APIPrefix()+"/publish", req, &raw); err != nil {
		return nil, fmt.Errorf("publish ipns %s: %w", i.UUID(), err)
	}
	if err := i.refresh(raw); err != nil {
		return nil, err
	}
	return i, nil
}

// Delete removes the record.
func (i *IPNS) Delete(ctx context.Context) error {
	if err := i.Client().Delete(ctx, i.APIPrefix(), nil); err != nil {
		return fmt.Errorf("delete ipns %s: %w", i.UUID(), err)
	}
	return nil
}

func (i *IPNS) refresh(raw json.RawMessage) error {
	var state struct {
		IPNSName  *string `json:"ipnsName"`
		IPNSValue *string `json:"ipnsValue"`
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("decode ipns %s: %w", i.UUID(), err)
	}
	if state.IPNSName != nil {
		i.IPNSName = *state.IPNSName
	}
	if state.IPNSValue != nil {
		i.IPNSValue = *state.IPNSValue
	}
	return apillon.PopulateJSON(i, raw)
}
