package indexes

// Test-only access for the external indexes_test package, which cannot live
// in package indexes because testutil imports stores that import indexes.
var List = list

func (i indexInfo) TTL() int32 { return i.ttl() }
