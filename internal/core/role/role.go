// Package role holds the static role catalog and the capability table that
// replaces per-role predicate methods with a single data-driven lookup.
package role

// Role keys as stored on users.role_key.
const (
	KeyCEO                   = "CEO"
	KeyCFO                   = "CFO"
	KeyAdmin                 = "ADMIN"
	KeyProjectManager        = "PROJECT_MANAGER"
	KeySale                  = "SALE"
	KeyQS                    = "QS"
	KeyPurchasing            = "PURCHASING"
	KeyProcurementManager    = "PROCUREMENT_MANAGER"
	KeyConstruction          = "CONSTRUCTION"
	KeyConstructionManager   = "CONSTRUCTION_MANAGER"
	KeyLiabilitiesAccountant = "LIABILITIES_ACCOUNTANT"
)

// Capability is the flag set attached to a role key.
type Capability struct {
	IsCEO                   bool
	IsCFO                   bool
	IsAdmin                 bool
	IsPM                    bool
	IsSale                  bool
	IsQS                    bool
	IsPurchasing            bool
	IsProcurementManager    bool
	IsConstruction          bool
	IsLiabilitiesAccountant bool
}

var catalog = map[string]Capability{
	KeyCEO:                   {IsCEO: true},
	KeyCFO:                   {IsCFO: true},
	KeyAdmin:                 {IsAdmin: true},
	KeyProjectManager:        {IsPM: true},
	KeySale:                  {IsSale: true},
	KeyQS:                    {IsQS: true},
	KeyPurchasing:            {IsPurchasing: true},
	KeyProcurementManager:    {IsProcurementManager: true, IsPurchasing: true},
	KeyConstruction:          {IsConstruction: true},
	KeyConstructionManager:   {IsConstruction: true},
	KeyLiabilitiesAccountant: {IsLiabilitiesAccountant: true},
}

// Lookup returns the capability set for a role key. Unknown keys yield the
// zero capability, which denies everything.
func Lookup(key string) Capability {
	return catalog[key]
}

// Valid reports whether key belongs to the catalog.
func Valid(key string) bool {
	_, ok := catalog[key]
	return ok
}

// Actor is the resolved identity every operation receives: who is calling and
// with which role. A nil actor means an unauthenticated/system call.
type Actor struct {
	ID      string
	Name    string
	RoleKey string
	IsOwner bool
}

// Cap returns the actor's capability set.
func (a *Actor) Cap() Capability {
	if a == nil {
		return Capability{}
	}
	return Lookup(a.RoleKey)
}
