package cds

// DefaultMaxEntries is the registry capacity used when Options.MaxEntries is zero.
const DefaultMaxEntries = 128

// ResetType tells Open what kind of reset preceded it.
type ResetType int

const (
	// ResetProcessor keeps the region contents when they validate.
	ResetProcessor ResetType = iota
	// ResetPowerOn discards the region contents unconditionally.
	ResetPowerOn
)

func (r ResetType) String() string {
	switch r {
	case ResetProcessor:
		return "processor"
	case ResetPowerOn:
		return "power-on"
	default:
		return "unknown"
	}
}

// AppDirectory answers whether an application is currently running.
type AppDirectory interface {
	IsActive(app string) bool
}

// AppFunc adapts a function to AppDirectory.
type AppFunc func(app string) bool

// IsActive calls f.
func (f AppFunc) IsActive(app string) bool { return f(app) }

// Options configures Open.
type Options struct {
	// BlockSizes lists the allocator buckets. The registry block must fit
	// the largest one.
	// Default: alloc.DefaultBucketSizes
	BlockSizes []uint32

	// MaxEntries is the registry capacity.
	// Default: DefaultMaxEntries
	MaxEntries int

	// Reset selects restore or wipe.
	// Default: ResetProcessor
	Reset ResetType

	// StrictRestore makes a failed ResetProcessor restore return an error
	// wrapping ErrRegionInvalid instead of wiping the region.
	StrictRestore bool

	// Apps is consulted by Delete. Nil means no application is active.
	Apps AppDirectory
}

// DefaultOptions returns the options used when Open is given nil.
func DefaultOptions() *Options {
	return &Options{
		MaxEntries: DefaultMaxEntries,
		Reset:      ResetProcessor,
	}
}
