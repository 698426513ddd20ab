package nft

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/apillon/apillon-go"
)

// EvmChain identifies an EVM network by chain id.
type EvmChain int

const (
	ChainMoonbeam EvmChain = 1284
	ChainMoonbase EvmChain = 1287
	ChainAstar    EvmChain = 592
)

func (c EvmChain) String() string {
	switch c {
	case ChainMoonbeam:
		return "MOONBEAM"
	case ChainMoonbase:
		return "MOONBASE"
	case ChainAstar:
		return "ASTAR"
	default:
		return strconv.Itoa(int(c))
	}
}

// SubstrateChain identifies a Substrate network.
type SubstrateChain int

const (
	SubstrateAstar  SubstrateChain = 8
	SubstrateUnique SubstrateChain = 11
)

func (c SubstrateChain) String() string {
	switch c {
	case SubstrateAstar:
		return "ASTAR"
	case SubstrateUnique:
		return "UNIQUE"
	default:
		return strconv.Itoa(int(c))
	}
}

// ParseEvmChain accepts a chain name (case-insensitive) or id.
func ParseEvmChain(s string) (EvmChain, error) {
	for _, c := range []EvmChain{ChainMoonbeam, ChainMoonbase, ChainAstar} {
		if strings.EqualFold(c.String(), s) || strconv.Itoa(int(c)) == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown evm chain %q: %w", s, apillon.ErrInvalidInput)
}

// ParseSubstrateChain accepts a chain name (case-insensitive) or id.
func ParseSubstrateChain(s string) (SubstrateChain, error) {
	for _, c := range []SubstrateChain{SubstrateAstar, SubstrateUnique} {
		if strings.EqualFold(c.String(), s) || strconv.Itoa(int(c)) == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown substrate chain %q: %w", s, apillon.ErrInvalidInput)
}

// CollectionType is the contract flavour of a collection.
type CollectionType int

const (
	CollectionGeneric  CollectionType = 1
	CollectionNestable CollectionType = 2
)

func (t CollectionType) String() string {
	switch t {
	case CollectionGeneric:
		return "GENERIC"
	case CollectionNestable:
		return "NESTABLE"
	default:
		return strconv.Itoa(int(t))
	}
}

// CollectionStatus is the deployment state of a collection contract.
type CollectionStatus int

const (
	CollectionCreated         CollectionStatus = 0
	CollectionDeployInitiated CollectionStatus = 1
	CollectionDeploying       CollectionStatus = 2
	CollectionDeployed        CollectionStatus = 3
	CollectionTransferred     CollectionStatus = 4
	CollectionFailed          CollectionStatus = 5
)

func (s CollectionStatus) String() string {
	switch s {
	case CollectionCreated:
		return "CREATED"
	case CollectionDeployInitiated:
		return "DEPLOY_INITIATED"
	case CollectionDeploying:
		return "DEPLOYING"
	case CollectionDeployed:
		return "DEPLOYED"
	case CollectionTransferred:
		return "TRANSFERRED"
	case CollectionFailed:
		return "FAILED"
	default:
		return strconv.Itoa(int(s))
	}
}

// TransactionStatus is the on-chain state of a transaction.
type TransactionStatus int

const (
	TransactionPending   TransactionStatus = 1
	TransactionConfirmed TransactionStatus = 2
	TransactionFailed    TransactionStatus = 3
	TransactionError     TransactionStatus = 4
)

func (s TransactionStatus) String() string {
	switch s {
	case TransactionPending:
		return "PENDING"
	case TransactionConfirmed:
		return "CONFIRMED"
	case TransactionFailed:
		return "FAILED"
	case TransactionError:
		return "ERROR"
	default:
		return strconv.Itoa(int(s))
	}
}

// TransactionType is what a collection transaction did.
type TransactionType int

const (
	TransactionDeployContract            TransactionType = 1
	TransactionTransferContractOwnership TransactionType = 2
	TransactionMintNFT                   TransactionType = 3
	TransactionSetCollectionBaseURI      TransactionType = 4
	TransactionBurnNFT                   TransactionType = 5
	TransactionNestMintNFT               TransactionType = 6
)

func (t TransactionType) String() string {
	switch t {
	case TransactionDeployContract:
		return "DEPLOY_CONTRACT"
	case TransactionTransferContractOwnership:
		return "TRANSFER_CONTRACT_OWNERSHIP"
	case TransactionMintNFT:
		return "MINT_NFT"
	case TransactionSetCollectionBaseURI:
		return "SET_COLLECTION_BASE_URI"
	case TransactionBurnNFT:
		return "BURN_NFT"
	case TransactionNestMintNFT:
		return "NEST_MINT_NFT"
	default:
		return strconv.Itoa(int(t))
	}
}

// ParseCollectionType accepts a type name (case-insensitive) or value.
func ParseCollectionType(s string) (CollectionType, error) {
	for _, t := range []CollectionType{CollectionGeneric, CollectionNestable} {
		if strings.EqualFold(t.String(), s) || strconv.Itoa(int(t)) == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown collection type %q: %w", s, apillon.ErrInvalidInput)
}

// ParseCollectionStatus accepts a status name (case-insensitive) or value.
func ParseCollectionStatus(s string) (CollectionStatus, error) {
	for v := CollectionCreated; v <= CollectionFailed; v++ {
		if strings.EqualFold(v.String(), s) || strconv.Itoa(int(v)) == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown collection status %q: %w", s, apillon.ErrInvalidInput)
}

// ParseTransactionStatus accepts a status name (case-insensitive) or value.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	for v := TransactionPending; v <= TransactionError; v++ {
		if strings.EqualFold(v.String(), s) || strconv.Itoa(int(v)) == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction status %q: %w", s, apillon.ErrInvalidInput)
}

// ParseTransactionType accepts a type name (case-insensitive) or value.
func ParseTransactionType(s string) (TransactionType, error) {
	for v := TransactionDeployContract; v <= TransactionNestMintNFT; v++ {
		if strings.EqualFold(v.String(), s) || strconv.Itoa(int(v)) == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction type %q: %w", s, apillon.ErrInvalidInput)
}

// Price is a token amount. It travels as a JSON number and accepts quoted
// numbers on input.
type Price struct {
	decimal.Decimal
}

// NewPrice parses a decimal string such as "0.05".
func NewPrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("parse price %q: %w", s, apillon.ErrInvalidInput)
	}
	return Price{Decimal: d}, nil
}

// MarshalJSON writes the price as an unquoted number.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts a number or a quoted number.
func (p *Price) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	return p.Decimal.UnmarshalJSON(b)
}

// CollectionFilter filters ListCollections.
type CollectionFilter struct {
	CollectionStatus *CollectionStatus `query:"collectionStatus"`
	apillon.Pagination
}

// TransactionFilter filters Collection.ListTransactions.
type TransactionFilter struct {
	TransactionStatus *TransactionStatus `query:"transactionStatus"`
	TransactionType   *TransactionType   `query:"transactionType"`
	apillon.Pagination
}
