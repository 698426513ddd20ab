package nft

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/apillon/apillon-go"
)

const prefix = "/nfts/collections"

// NFT is the entry point to NFT collections.
type NFT struct {
	apillon.Module
}

// New creates the NFT module.
func New(api *apillon.Client) *NFT {
	return &NFT{Module: apillon.NewModule(api, prefix)}
}

// Collection returns a handle to a collection without fetching it.
func (n *NFT) Collection(uuid string) *Collection {
	return newCollection(n.Client(), uuid)
}

// ListCollections returns one page of collections.
func (n *NFT) ListCollections(ctx context.Context, filter *CollectionFilter) (*apillon.List[*Collection], error) {
	var raw apillon.RawList
	if err := n.Client().Get(ctx, apillon.BuildURL(n.APIPrefix(), filter, nil), &raw); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return apillon.DecodeList(raw, func(item json.RawMessage) (*Collection, error) {
		return decodeCollection(n.Client(), item)
	})
}

// CollectionBase holds the fields every collection flavour shares.
type CollectionBase struct {
	Name        string `json:"name" validate:"required,max=255"`
	Symbol      string `json:"symbol" validate:"required,max=8"`
	Description string `json:"description,omitempty" validate:"max=1000"`
	MaxSupply   int    `json:"maxSupply" validate:"gte=0"`

	// The drop fields are sent as zero unless Drop is set.
	Drop        bool  `json:"drop"`
	DropStart   int64 `json:"dropStart" validate:"gte=0"`
	DropPrice   Price `json:"dropPrice"`
	DropReserve int   `json:"dropReserve" validate:"gte=0"`

	IsRevokable bool `json:"isRevokable"`
	IsSoulbound bool `json:"isSoulbound"`
}

// normalize zeroes the drop fields of a collection that is not a drop.
func (b *CollectionBase) normalize() error {
	if !b.Drop {
		b.DropStart = 0
		b.DropPrice = Price{Decimal: decimal.Zero}
		b.DropReserve = 0
		return nil
	}
	if b.DropPrice.IsNegative() {
		return fmt.Errorf("drop price must not be negative: %w", apillon.ErrInvalidInput)
	}
	return nil
}

// CreateCollectionRequest creates a collection on an EVM chain.
type CreateCollectionRequest struct {
	CollectionBase

	Chain            EvmChain       `json:"chain" validate:"oneof=1284 1287 592"`
	CollectionType   CollectionType `json:"collectionType,omitempty" validate:"omitempty,oneof=1 2"`
	BaseURI          string         `json:"baseUri" validate:"required,url"`
	BaseExtension    string         `json:"baseExtension,omitempty"`
	RoyaltiesAddress string         `json:"royaltiesAddress,omitempty" validate:"omitempty,eth_addr"`
	RoyaltiesFees    float64        `json:"royaltiesFees" validate:"gte=0,lte=100"`
	UseApillonIPFS   bool           `json:"useApillonIpfsGateway,omitempty"`
}

// CreateSubstrateCollectionRequest creates a collection on a Substrate chain.
type CreateSubstrateCollectionRequest struct {
	CollectionBase

	Chain            SubstrateChain `json:"chain" validate:"oneof=8 11"`
	BaseURI          string         `json:"baseUri" validate:"required,url"`
	BaseExtension    string         `json:"baseExtension,omitempty"`
	RoyaltiesAddress string         `json:"royaltiesAddress,omitempty"`
	RoyaltiesFees    float64        `json:"royaltiesFees" validate:"gte=0,lte=100"`
}

// CreateUniqueCollectionRequest creates a collection on Unique network with
// metadata stored on chain, keyed by token id.
type CreateUniqueCollectionRequest struct {
	CollectionBase

	Chain    SubstrateChain            `json:"chain" validate:"eq=11"`
	Metadata map[string]map[string]any `json:"metadata,omitempty"`
}

// Create creates an EVM collection. When Drop is false the drop fields are
// submitted as zero whatever the caller set.
func (n *NFT) Create(ctx context.Context, req CreateCollectionRequest) (*Collection, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	return n.create(ctx, "evm", req)
}

// CreateSubstrate creates a Substrate collection.
func (n *NFT) CreateSubstrate(ctx context.Context, req CreateSubstrateCollectionRequest) (*Collection, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	return n.create(ctx, "substrate", req)
}

// CreateUnique creates a Unique collection.
func (n *NFT) CreateUnique(ctx context.Context, req CreateUniqueCollectionRequest) (*Collection, error) {
	if req.Chain == 0 {
		req.Chain = SubstrateUnique
	}
	if err := req.normalize(); err != nil {
		return nil, err
	}
	return n.create(ctx, "unique", req)
}

func (n *NFT) create(ctx context.Context, kind string, req any) (*Collection, error) {
	if err := apillon.ValidateRequest(req); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := n.Client().Post(ctx, n.APIPrefix()+"/"+kind, req, &raw); err != nil {
		return nil, fmt.Errorf("create %s collection: %w", kind, err)
	}
	return decodeCollection(n.Client(), raw)
}
