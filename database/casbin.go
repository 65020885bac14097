package database

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v3"
)

// Casbin builds the enforcer backed by the policy table in Postgres. User
// role grouping (telegram id -> role) is written at registration time.
func Casbin() *casbin.Enforcer {
	adapter, err := gormadapter.NewAdapterByDB(Postgres)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize casbin adapter: %v", err))
	}

	e, err := casbin.NewEnforcer("config/restful_rbac_model.conf", adapter)
	if err != nil {
		panic(fmt.Sprintf("failed to create casbin enforcer: %v", err))
	}

	// Seed the admin surface policy
	if hasPolicy, _ := e.HasPolicy("admin", "/v1/admin*", "(GET)|(POST)|(PUT)|(DELETE)"); !hasPolicy {
		e.AddPolicy("admin", "/v1/admin*", "(GET)|(POST)|(PUT)|(DELETE)")
	}

	e.LoadPolicy()
	return e
}
