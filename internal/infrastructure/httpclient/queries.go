package httpclient

// GraphQL documents for the Movement indexer.

const getFungibleAssetsQuery = `
query GetFungibleAssetsDetailed($userAddress: String!) {
  current_fungible_asset_balances(
    where: {
      owner_address: {_eq: $userAddress},
      amount: {_gt: 0}
    }
  ) {
    asset_type
    amount
    last_transaction_timestamp
    owner_address
    storage_id
    is_frozen
    is_primary
    token_standard
    metadata {
      token_standard
      name
      symbol
      decimals
      icon_uri
      project_uri
      asset_type
    }
  }
}
`

const getMoveBalanceQuery = `
query GetAptosCoinBalance($userAddress: String!, $assetType: String!) {
  current_fungible_asset_balances(
    where: {
      owner_address: {_eq: $userAddress},
      asset_type: {_eq: $assetType},
      amount: {_gt: 0}
    }
  ) {
    asset_type
    amount
    last_transaction_timestamp
    metadata {
      token_standard
      name
      symbol
      decimals
      icon_uri
      project_uri
      asset_type
    }
  }
}
`

const getActivitiesQuery = `
query GetFungibleAssetActivities($ownerAddress: String!, $limit: Int, $offset: Int) {
  fungible_asset_activities(
    where: {
      owner_address: {_eq: $ownerAddress},
      is_transaction_success: {_eq: true}
    },
    order_by: {transaction_timestamp: desc},
    limit: $limit,
    offset: $offset
  ) {
    transaction_version
    transaction_timestamp
    amount
    asset_type
    type
    owner_address
    is_transaction_success
  }
}
`

const getUserObjectsQuery = `
query GetUserObjects($ownerAddress: String!) {
  current_objects(
    where: { owner_address: { _eq: $ownerAddress } }
  ) {
    object_address
    owner_address
    last_transaction_version
  }
}
`
