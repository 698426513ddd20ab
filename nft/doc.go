// Package nft manages NFT collections on EVM and Substrate chains.
//
// Create, CreateSubstrate and CreateUnique deploy a new collection contract.
// A collection that is not a drop always goes out with DropStart, DropPrice
// and DropReserve set to zero, whatever the request held. Prices are
// decimals (shopspring/decimal) so fractional token amounts keep their
// precision.
//
// Minting, burning and ownership transfer submit chain transactions and
// return their hash; ListTransactions reports their progress.
package nft
