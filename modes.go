package reqwest

// FetchMode controls cross-origin semantics of a request. The tokens mirror
// the platform fetch contract (https://developer.mozilla.org/en-US/docs/Web/API/Request/mode)
// and are stored and forwarded without interpretation.
type FetchMode string

const (
	ModeSameOrigin FetchMode = "same-origin"
	ModeNoCORS     FetchMode = "no-cors"
	ModeCORS       FetchMode = "cors"
	ModeNavigate   FetchMode = "navigate"
)

// CacheMode controls how a request interacts with a cache. The tokens mirror
// the platform fetch contract (https://developer.mozilla.org/en-US/docs/Web/API/Request/cache).
// The core stores and forwards them unchanged; the cache package is the only
// component that acts on them.
type CacheMode string

const (
	CacheDefault      CacheMode = "default"
	CacheNoStore      CacheMode = "no-store"
	CacheReload       CacheMode = "reload"
	CacheNoCache      CacheMode = "no-cache"
	CacheForceCache   CacheMode = "force-cache"
	CacheOnlyIfCached CacheMode = "only-if-cached"
)
