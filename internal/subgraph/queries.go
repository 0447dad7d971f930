package subgraph

// Page and chunk sizes honoring upstream query limits.
const (
	// DayDataPageSize is the page size for paged day-data walks.
	DayDataPageSize = 1000

	// BlockChunkSize caps aliased per-block queries in one request.
	BlockChunkSize = 100

	// TxnPageSize caps transaction sub-series fetches.
	TxnPageSize = 30
)

const pairFields = `
	fragment PairFields on Pair {
		id
		token0 { id symbol name decimals }
		token1 { id symbol name decimals }
		reserve0
		reserve1
		reserveUSD
		trackedReserveNativeCurrency
		volumeUSD
		untrackedVolumeUSD
		totalSupply
		txCount
		token0Price
		token1Price
		createdAtBlockNumber
		createdAtTimestamp
	}
`

const tokenFields = `
	fragment TokenFields on Token {
		id
		symbol
		name
		decimals
		tradeVolumeUSD
		untrackedVolumeUSD
		txCount
		totalLiquidity
		derivedNativeCurrency
	}
`

const nativePriceQuery = `
	query NativeCurrencyPrice {
		bundle(id: "1") {
			nativeCurrencyPrice
		}
	}
`

const syncedBlockQuery = `
	query SyncedBlock {
		_meta {
			block {
				number
			}
		}
	}
`

const pairsByIDsQuery = `
	query PairsByIDs($ids: [ID!]!) {
		pairs(first: 1000, where: { id_in: $ids }) {
			...PairFields
		}
	}
` + pairFields

const pairsByIDsAtBlockQuery = `
	query PairsByIDsAtBlock($ids: [ID!]!, $block: Int!) {
		pairs(first: 1000, where: { id_in: $ids }, block: { number: $block }) {
			...PairFields
		}
	}
` + pairFields

const pairAtBlockQuery = `
	query PairAtBlock($id: ID!, $block: Int!) {
		pair(id: $id, block: { number: $block }) {
			...PairFields
		}
	}
` + pairFields

const topPairsQuery = `
	query TopPairs($n: Int!) {
		pairs(first: $n, orderBy: trackedReserveNativeCurrency, orderDirection: desc) {
			id
		}
	}
`

const tokensByIDsQuery = `
	query TokensByIDs($ids: [ID!]!) {
		tokens(first: 1000, where: { id_in: $ids }) {
			...TokenFields
		}
	}
` + tokenFields

const tokensByIDsAtBlockQuery = `
	query TokensByIDsAtBlock($ids: [ID!]!, $block: Int!) {
		tokens(first: 1000, where: { id_in: $ids }, block: { number: $block }) {
			...TokenFields
		}
	}
` + tokenFields

const tokenAtBlockQuery = `
	query TokenAtBlock($id: ID!, $block: Int!) {
		token(id: $id, block: { number: $block }) {
			...TokenFields
		}
	}
` + tokenFields

const topTokensQuery = `
	query TopTokens($n: Int!) {
		tokens(first: $n, orderBy: tradeVolumeUSD, orderDirection: desc) {
			id
		}
	}
`

const pairDayDatasQuery = `
	query PairDayDatas($id: String!, $start: Int!, $skip: Int!) {
		pairDayDatas(
			first: 1000
			skip: $skip
			orderBy: date
			orderDirection: asc
			where: { pairAddress: $id, date_gt: $start }
		) {
			date
			dailyVolumeUSD
			reserveUSD
		}
	}
`

const tokenDayDatasQuery = `
	query TokenDayDatas($id: String!, $start: Int!, $skip: Int!) {
		tokenDayDatas(
			first: 1000
			skip: $skip
			orderBy: date
			orderDirection: asc
			where: { token: $id, date_gt: $start }
		) {
			date
			dailyVolumeUSD
			totalLiquidityUSD
		}
	}
`

const pairTxnsQuery = `
	query PairTxns($id: String!, $n: Int!) {
		swaps(first: $n, orderBy: timestamp, orderDirection: desc, where: { pair: $id }) {
			transaction { id }
			timestamp
			amountUSD
			to
		}
		mints(first: $n, orderBy: timestamp, orderDirection: desc, where: { pair: $id }) {
			transaction { id }
			timestamp
			amountUSD
			to
		}
		burns(first: $n, orderBy: timestamp, orderDirection: desc, where: { pair: $id }) {
			transaction { id }
			timestamp
			amountUSD
			sender
		}
	}
`

const campaignsQuery = `
	query Campaigns($n: Int!) {
		liquidityMiningCampaigns(first: $n, orderBy: startsAt, orderDirection: desc) {
			id
			startsAt
			endsAt
			locked
			stakedAmount
			rewards {
				token { id symbol name decimals }
				amount
			}
			stakablePair {
				...PairFields
			}
		}
	}
` + pairFields
