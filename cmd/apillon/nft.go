package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/clientcli"
	"github.com/apillon/apillon-go/nft"
)

func (a *app) newNFTCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nft",
		Short: "Manage NFT collections",
	}
	cmd.AddCommand(
		a.newListCollectionsCmd(),
		a.newGetCollectionCmd(),
		a.newCreateCollectionCmd(),
		a.newMintCmd(),
		a.newNestMintCmd(),
		a.newBurnCmd(),
		a.newTransferCmd(),
		a.newListTransactionsCmd(),
	)
	return cmd
}

func (a *app) newListCollectionsCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list-collections",
		Short: "List the project's NFT collections",
		Args:  cobra.NoArgs,
	}
	page := addPageFlags(cmd)
	cmd.Flags().StringVar(&status, "status", "", "filter by collection status")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		filter := &nft.CollectionFilter{Pagination: page.pagination(cmd)}
		if status != "" {
			s, err := nft.ParseCollectionStatus(status)
			if err != nil {
				return err
			}
			filter.CollectionStatus = apillon.Ptr(s)
		}
		client, err := a.client()
		if err != nil {
			return err
		}
		list, err := client.NFT.ListCollections(cmd.Context(), filter)
		if err != nil {
			return err
		}
		return a.printTable(list, clientcli.CollectionsTable(list))
	}
	return cmd
}

func (a *app) newGetCollectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <collection-uuid>",
		Aliases: []string{"get-collection"},
		Short:   "Show a collection's details",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args...); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			collection, err := client.NFT.Collection(args[0]).Get(cmd.Context())
			if err != nil {
				return err
			}
			return a.printDetails(collection, clientcli.CollectionDetails(collection))
		},
	}
}

// collectionFlags hold the create-collection options of every chain family.
type collectionFlags struct {
	family           string
	chain            string
	collectionType   string
	description      string
	baseURI          string
	baseExtension    string
	maxSupply        int
	drop             bool
	dropStart        int64
	dropPrice        string
	dropReserve      int
	revokable        bool
	soulbound        bool
	royaltiesAddress string
	royaltiesFees    float64
	apillonIPFS      bool
	metadataFile     string
}

func (f *collectionFlags) base(name, symbol string) (nft.CollectionBase, error) {
	b := nft.CollectionBase{
		Name:        name,
		Symbol:      symbol,
		Description: f.description,
		MaxSupply:   f.maxSupply,
		Drop:        f.drop,
		DropStart:   f.dropStart,
		DropReserve: f.dropReserve,
		IsRevokable: f.revokable,
		IsSoulbound: f.soulbound,
	}
	if f.drop {
		price, err := nft.NewPrice(f.dropPrice)
		if err != nil {
			return b, err
		}
		b.DropPrice = price
	}
	return b, nil
}

func (a *app) newCreateCollectionCmd() *cobra.Command {
	f := &collectionFlags{}
	cmd := &cobra.Command{
		Use:     "create <name> <symbol>",
		Aliases: []string{"create-collection"},
		Short:   "Create and deploy an NFT collection",
		Long: `Create an NFT collection and deploy its contract.

--family selects the chain family:
  evm        Moonbeam, Moonbase or Astar (--chain MOONBEAM|MOONBASE|ASTAR)
  substrate  Astar or Unique (--chain ASTAR|UNIQUE)
  unique     Unique network with on-chain metadata (--metadata file.json)

The drop fields are only sent with --drop.

Examples:
  apillon nft create "Space Cats" CATS --chain MOONBASE \
    --base-uri https://example.com/meta/ --base-extension .json --max-supply 1000
  apillon nft create Tickets TIX --family unique --metadata meta.json \
    --drop --drop-price 0.5 --drop-start 1767225600`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := f.base(args[0], args[1])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			var collection *nft.Collection
			switch f.family {
			case "evm":
				req := nft.CreateCollectionRequest{
					CollectionBase:   base,
					BaseURI:          f.baseURI,
					BaseExtension:    f.baseExtension,
					RoyaltiesAddress: f.royaltiesAddress,
					RoyaltiesFees:    f.royaltiesFees,
					UseApillonIPFS:   f.apillonIPFS,
				}
				if req.Chain, err = nft.ParseEvmChain(f.chain); err != nil {
					return err
				}
				if f.collectionType != "" {
					if req.CollectionType, err = nft.ParseCollectionType(f.collectionType); err != nil {
						return err
					}
				}
				collection, err = client.NFT.Create(cmd.Context(), req)
			case "substrate":
				req := nft.CreateSubstrateCollectionRequest{
					CollectionBase:   base,
					BaseURI:          f.baseURI,
					BaseExtension:    f.baseExtension,
					RoyaltiesAddress: f.royaltiesAddress,
					RoyaltiesFees:    f.royaltiesFees,
				}
				if req.Chain, err = nft.ParseSubstrateChain(f.chain); err != nil {
					return err
				}
				collection, err = client.NFT.CreateSubstrate(cmd.Context(), req)
			case "unique":
				req := nft.CreateUniqueCollectionRequest{CollectionBase: base}
				if f.metadataFile != "" {
					if req.Metadata, err = readMetadata(f.metadataFile); err != nil {
						return err
					}
				}
				collection, err = client.NFT.CreateUnique(cmd.Context(), req)
			default:
				return fmt.Errorf("unknown chain family %q: %w", f.family, apillon.ErrInvalidInput)
			}
			if err != nil {
				return err
			}
			return a.printDetails(collection, clientcli.CollectionDetails(collection))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.family, "family", "evm", "chain family: evm, substrate, unique")
	flags.StringVar(&f.chain, "chain", nft.ChainMoonbase.String(), "chain name or id")
	flags.StringVar(&f.collectionType, "type", "", "EVM collection type: GENERIC, NESTABLE")
	flags.StringVarP(&f.description, "description", "d", "", "collection description")
	flags.StringVar(&f.baseURI, "base-uri", "", "metadata base URI")
	flags.StringVar(&f.baseExtension, "base-extension", "", "metadata file extension, e.g. .json")
	flags.IntVar(&f.maxSupply, "max-supply", 0, "maximum number of tokens (0 is unlimited)")
	flags.BoolVar(&f.drop, "drop", false, "open a public drop")
	flags.Int64Var(&f.dropStart, "drop-start", 0, "drop start as a unix timestamp")
	flags.StringVar(&f.dropPrice, "drop-price", "0", "drop price in the chain's native token")
	flags.IntVar(&f.dropReserve, "drop-reserve", 0, "tokens reserved for the owner")
	flags.BoolVar(&f.revokable, "revokable", false, "allow the owner to burn tokens")
	flags.BoolVar(&f.soulbound, "soulbound", false, "make tokens non-transferable")
	flags.StringVar(&f.royaltiesAddress, "royalties-address", "", "royalties recipient")
	flags.Float64Var(&f.royaltiesFees, "royalties-fees", 0, "royalties percentage")
	flags.BoolVar(&f.apillonIPFS, "apillon-ipfs", false, "serve metadata from the platform IPFS gateway")
	flags.StringVar(&f.metadataFile, "metadata", "", "JSON file of on-chain metadata keyed by token id (unique only)")
	return cmd
}

func readMetadata(path string) (map[string]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var metadata map[string]map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	return metadata, nil
}

func (a *app) printTransaction(res *nft.TransactionResult) error {
	msg := "Transaction submitted."
	if res.TransactionHash != "" {
		msg = "Transaction submitted: " + res.TransactionHash
	}
	return a.printMessage(msg, res)
}

func (a *app) newMintCmd() *cobra.Command {
	var (
		quantity int
		ids      []int
	)
	cmd := &cobra.Command{
		Use:   "mint <collection-uuid> <receiving-address>",
		Short: "Mint tokens to an address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args[0]); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			res, err := client.NFT.Collection(args[0]).Mint(cmd.Context(), nft.MintRequest{
				ReceivingAddress: args[1],
				Quantity:         quantity,
				IDsToMint:        ids,
			})
			if err != nil {
				return err
			}
			return a.printTransaction(res)
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "n", 1, "number of tokens")
	cmd.Flags().IntSliceVar(&ids, "ids", nil, "token ids to mint")
	return cmd
}

func (a *app) newNestMintCmd() *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "nest-mint <collection-uuid> <parent-collection-uuid> <parent-token-id>",
		Short: "Mint tokens owned by a token of another collection",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args[0], args[1]); err != nil {
				return err
			}
			parentID, err := parseTokenID(args[2])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			res, err := client.NFT.Collection(args[0]).NestMint(cmd.Context(), nft.NestMintRequest{
				ParentCollectionUUID: args[1],
				ParentNftID:          parentID,
				Quantity:             quantity,
			})
			if err != nil {
				return err
			}
			return a.printTransaction(res)
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "n", 1, "number of tokens")
	return cmd
}

func (a *app) newBurnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "burn <collection-uuid> <token-id>",
		Short: "Burn a token of a revokable collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args[0]); err != nil {
				return err
			}
			tokenID, err := parseTokenID(args[1])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			res, err := client.NFT.Collection(args[0]).Burn(cmd.Context(), tokenID)
			if err != nil {
				return err
			}
			return a.printTransaction(res)
		},
	}
}

func (a *app) newTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <collection-uuid> <address>",
		Short: "Transfer contract ownership to an address",
		Long: `Transfer ownership of a collection's contract to an address.

The collection can no longer be managed through the platform afterwards.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientcli.ValidateIDs(args[0]); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			collection, err := client.NFT.Collection(args[0]).TransferOwnership(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			return a.printDetails(collection, clientcli.CollectionDetails(collection))
		},
	}
}

func (a *app) newListTransactionsCmd() *cobra.Command {
	var status, txType string
	cmd := &cobra.Command{
		Use:   "list-transactions <collection-uuid>",
		Short: "List a collection's transactions",
		Args:  cobra.ExactArgs(1),
	}
	page := addPageFlags(cmd)
	cmd.Flags().StringVar(&status, "status", "", "filter by transaction status")
	cmd.Flags().StringVar(&txType, "type", "", "filter by transaction type")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := clientcli.ValidateIDs(args...); err != nil {
			return err
		}
		filter := &nft.TransactionFilter{Pagination: page.pagination(cmd)}
		if status != "" {
			s, err := nft.ParseTransactionStatus(status)
			if err != nil {
				return err
			}
			filter.TransactionStatus = apillon.Ptr(s)
		}
		if txType != "" {
			t, err := nft.ParseTransactionType(txType)
			if err != nil {
				return err
			}
			filter.TransactionType = apillon.Ptr(t)
		}

		client, err := a.client()
		if err != nil {
			return err
		}
		list, err := client.NFT.Collection(args[0]).ListTransactions(cmd.Context(), filter)
		if err != nil {
			return err
		}
		return a.printTable(list, clientcli.TransactionsTable(list))
	}
	return cmd
}

func parseTokenID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid token id %q: %w", s, apillon.ErrInvalidInput)
	}
	return id, nil
}
