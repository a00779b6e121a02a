package exitcode

const (
	Success        = 0
	UsageError     = 1
	CacheConnError = 2
	FetchError     = 3
	MergeError     = 4
	LookupMiss     = 5
)
