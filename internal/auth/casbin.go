package auth

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/persist"
	"github.com/casbin/casbin/v2/util"
	sqlxadapter "github.com/memwey/casbin-sqlx-adapter"
)

// NewEnforcer creates an enforcer whose policies live in the casbin_rule
// table of the application database.
//
// Parameters:
//   - driverName: The name of the database driver (e.g., "mysql").
//   - dsn: The Data Source Name for the database connection.
//   - modelPath: The file path to the Casbin model configuration (`.conf`).
func NewEnforcer(driverName, dsn, modelPath string) (*casbin.Enforcer, error) {
	opts := &sqlxadapter.AdapterOptions{
		DriverName:     driverName,
		DataSourceName: dsn,
		TableName:      "casbin_rule",
	}
	return NewEnforcerWithAdapter(modelPath, sqlxadapter.NewAdapterFromOptions(opts))
}

// NewEnforcerWithAdapter creates an enforcer over any policy adapter. A nil
// adapter keeps policies in memory only.
func NewEnforcerWithAdapter(modelPath string, adapter persist.Adapter) (*casbin.Enforcer, error) {
	var (
		enforcer *casbin.Enforcer
		err      error
	)
	if adapter == nil {
		enforcer, err = casbin.NewEnforcer(modelPath)
	} else {
		enforcer, err = casbin.NewEnforcer(modelPath, adapter)
	}
	if err != nil {
		return nil, err
	}

	// The model matches request paths against policy patterns such as
	// "/articles/*" or "/admin/articles/:id".
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)

	if adapter != nil {
		if err := enforcer.LoadPolicy(); err != nil {
			return nil, err
		}
	}
	return enforcer, nil
}
