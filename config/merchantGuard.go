package config

import (
	"context"
	"strings"

	"github.com/paynetra/reports_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MerchantGuardPlugin enforces merchant isolation by automatically scoping
// queries to the request's client_code when the model has a client_code column
// and the actor is not an admin.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include client_code manually.
// - Admin/internal bypass is explicit via context flags.
type MerchantGuardPlugin struct{}

func NewMerchantGuardPlugin() *MerchantGuardPlugin { return &MerchantGuardPlugin{} }

func (p *MerchantGuardPlugin) Name() string { return "merchant_guard" }

func (p *MerchantGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("merchant_guard:query", merchantGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("merchant_guard:row", merchantGuardCallback); err != nil {
		return err
	}
	return nil
}

func merchantGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if shouldBypassMerchantScope(ctx) {
		return
	}
	clientCode := clientCodeFromContext(ctx)
	if clientCode == "" {
		return
	}

	// Only apply if the current model/table includes a client_code column.
	if db.Statement.Schema == nil {
		return
	}
	hasClientCode := false
	for _, f := range db.Statement.Schema.Fields {
		if strings.EqualFold(f.DBName, "client_code") {
			hasClientCode = true
			break
		}
	}
	if !hasClientCode {
		return
	}

	// Don't duplicate an explicit merchant filter.
	if whereHasClientCode(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "client_code"},
				Value:  clientCode,
			},
		},
	})
}

func clientCodeFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(appctx.ContextKeyClientCode).(string); ok && v != "" {
		return v
	}
	return ""
}

func shouldBypassMerchantScope(ctx context.Context) bool {
	if v, ok := ctx.Value(appctx.ContextKeySkipMerchantScope).(bool); ok && v {
		return true
	}
	if v, ok := ctx.Value(appctx.ContextKeyIsAdmin).(bool); ok && v {
		return true
	}
	return false
}

func whereHasClientCode(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasClientCode(e) {
			return true
		}
	}
	return false
}

func exprHasClientCode(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsClientCode(v.Column)
	case clause.IN:
		return colIsClientCode(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasClientCode(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasClientCode(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), "client_code")
	default:
		return false
	}
}

func colIsClientCode(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "client_code")
	case clause.Column:
		return strings.EqualFold(c.Name, "client_code")
	default:
		return false
	}
}
