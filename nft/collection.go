package nft

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apillon/apillon-go"
)

// Collection is an NFT collection and its contract.
type Collection struct {
	apillon.Entity `json:"-"`

	Chain            int              `json:"chain"`
	CollectionType   CollectionType   `json:"collectionType,omitempty"`
	Status           CollectionStatus `json:"collectionStatus"`
	Name             string           `json:"name"`
	Symbol           string           `json:"symbol"`
	Description      string           `json:"description,omitempty"`
	BaseURI          string           `json:"baseUri,omitempty"`
	BaseExtension    string           `json:"baseExtension,omitempty"`
	MaxSupply        int              `json:"maxSupply"`
	IsRevokable      bool             `json:"isRevokable"`
	IsSoulbound      bool             `json:"isSoulbound"`
	RoyaltiesAddress string           `json:"royaltiesAddress,omitempty"`
	RoyaltiesFees    float64          `json:"royaltiesFees"`
	Drop             bool             `json:"drop"`
	DropStart        int64            `json:"dropStart"`
	DropPrice        Price            `json:"dropPrice"`
	DropReserve      int              `json:"dropReserve"`
	ContractAddress  string           `json:"contractAddress,omitempty"`
	DeployerAddress  string           `json:"deployerAddress,omitempty"`
	TransactionHash  string           `json:"transactionHash,omitempty"`
}

func newCollection(api *apillon.Client, uuid string) *Collection {
	return &Collection{Entity: apillon.NewEntity(api, uuid, prefix+"/"+uuid)}
}

func decodeCollection(api *apillon.Client, raw json.RawMessage) (*Collection, error) {
	id, err := apillon.DecodeID(raw, "collectionUuid")
	if err != nil {
		return nil, err
	}
	c := newCollection(api, id)
	if err := c.refresh(raw); err != nil {
		return nil, err
	}
	return c, nil
}

// MarshalJSON includes the collection uuid.
func (c *Collection) MarshalJSON() ([]byte, error) {
	type plain Collection
	return apillon.MarshalEntity("collectionUuid", c.UUID(), (*plain)(c))
}

// Get fetches the collection. The status always takes the server's value.
func (c *Collection) Get(ctx context.Context) (*Collection, error) {
	var raw json.RawMessage
	if err := c.Client().Get(ctx, c.APIPrefix(), &raw); err != nil {
		return nil, fmt.Errorf("get collection %s: %w", c.UUID(), err)
	}
	if err := c.refresh(raw); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection) refresh(raw json.RawMessage) error {
	var state struct {
		Status *CollectionStatus `json:"collectionStatus"`
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("decode collection %s: %w", c.UUID(), err)
	}
	if state.Status != nil {
		c.Status = *state.Status
	}
	return apillon.PopulateJSON(c, raw)
}

// TransactionResult is returned by operations that submit a transaction.
type TransactionResult struct {
	Success         bool   `json:"success"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// MintRequest mints Quantity tokens to ReceivingAddress.
type MintRequest struct {
	ReceivingAddress string `json:"receivingAddress" validate:"required"`
	Quantity         int    `json:"quantity" validate:"min=1"`
	// IDsToMint selects token ids on collections that do not auto-increment.
	IDsToMint []int `json:"idsToMint,omitempty" validate:"omitempty,dive,gte=1"`
}

// NestMintRequest mints tokens owned by another NFT.
type NestMintRequest struct {
	ParentCollectionUUID string `json:"parentCollectionUuid" validate:"required,uuid"`
	ParentNftID          int    `json:"parentNftId" validate:"gte=1"`
	Quantity             int    `json:"quantity" validate:"min=1"`
}

type burnRequest struct {
	TokenID int `json:"tokenId" validate:"gte=1"`
}

type transferRequest struct {
	Address string `json:"address" validate:"required"`
}

// Mint mints new tokens.
func (c *Collection) Mint(ctx context.Context, req MintRequest) (*TransactionResult, error) {
	return c.submit(ctx, "mint", req)
}

// NestMint mints tokens as children of a token in a nestable parent collection.
func (c *Collection) NestMint(ctx context.Context, req NestMintRequest) (*TransactionResult, error) {
	return c.submit(ctx, "nest-mint", req)
}

// Burn destroys the token with the given id. Only revokable collections allow it.
func (c *Collection) Burn(ctx context.Context, tokenID int) (*TransactionResult, error) {
	return c.submit(ctx, "burn", burnRequest{TokenID: tokenID})
}

// TransferOwnership hands the contract over to address. The collection is
// no longer managed by the platform afterwards.
func (c *Collection) TransferOwnership(ctx context.Context, address string) (*Collection, error) {
	req := transferRequest{Address: address}
	if err := apillon.ValidateRequest(req); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.Client().Post(ctx, c.APIPrefix()+"/transfer", req, &raw); err != nil {
		return nil, fmt.Errorf("transfer collection %s: %w", c.UUID(), err)
	}
	if err := c.refresh(raw); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection) submit(ctx context.Context, action string, req any) (*TransactionResult, error) {
	if err := apillon.ValidateRequest(req); err != nil {
		return nil, err
	}
	var res TransactionResult
	if err := c.Client().Post(ctx, c.APIPrefix()+"/"+action, req, &res); err != nil {
		return nil, fmt.Errorf("%s on collection %s: %w", action, c.UUID(), err)
	}
	return &res, nil
}

// Transaction is a chain transaction issued for a collection.
type Transaction struct {
	ID                int               `json:"id"`
	ChainID           int               `json:"chainId"`
	TransactionType   TransactionType   `json:"transactionType"`
	TransactionStatus TransactionStatus `json:"transactionStatus"`
	TransactionHash   string            `json:"transactionHash"`
	UpdateTime        time.Time         `json:"updateTime"`
}

// ListTransactions returns one page of the collection's transactions.
func (c *Collection) ListTransactions(ctx context.Context, filter *TransactionFilter) (*apillon.List[Transaction], error) {
	var list apillon.List[Transaction]
	if err := c.Client().Get(ctx, apillon.BuildURL(c.APIPrefix()+"/transactions", filter, nil), &list); err != nil {
		return nil, fmt.Errorf("list transactions of collection %s: %w", c.UUID(), err)
	}
	return &list, nil
}
