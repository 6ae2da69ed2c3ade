package auth

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

// Role is the CRM role carried in the access token
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSales   Role = "sales"
	RoleProduct Role = "product"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleSales || r == RoleProduct
}

func (r Role) subject() string {
	return "role:" + string(r)
}

const (
	ObjectCurrency  = "currency"
	ObjectPricing   = "pricing"
	ObjectRFQ       = "rfq"
	ObjectQuotation = "quotation"
	ObjectSales     = "sales"
	ObjectInvoice   = "invoice"
)

const (
	ActionView      = "view"
	ActionConvert   = "convert"
	ActionManage    = "manage"
	ActionCalculate = "calculate"
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionSubmit    = "submit"
	ActionStart     = "start"
	ActionClose     = "close"
	ActionCancel    = "cancel"
	ActionQueue     = "queue"
	ActionDecide    = "decide"
	ActionExpire    = "expire"
	ActionPrint     = "print"
	ActionExport    = "export"
)

// ErrForbidden is returned when a role may not perform an action
var ErrForbidden = errors.New("forbidden")

var defaultPolicies = [][]string{
	{RoleSales.subject(), ObjectCurrency, ActionView},
	{RoleSales.subject(), ObjectCurrency, ActionConvert},
	{RoleSales.subject(), ObjectPricing, ActionCalculate},
	{RoleSales.subject(), ObjectRFQ, ActionView},
	{RoleSales.subject(), ObjectRFQ, ActionCreate},
	{RoleSales.subject(), ObjectRFQ, ActionUpdate},
	{RoleSales.subject(), ObjectRFQ, ActionSubmit},
	{RoleSales.subject(), ObjectRFQ, ActionClose},
	{RoleSales.subject(), ObjectRFQ, ActionCancel},
	{RoleSales.subject(), ObjectQuotation, ActionView},
	{RoleSales.subject(), ObjectQuotation, ActionDecide},
	{RoleSales.subject(), ObjectQuotation, ActionPrint},
	{RoleSales.subject(), ObjectSales, ActionView},
	{RoleSales.subject(), ObjectInvoice, ActionView},
	{RoleSales.subject(), ObjectInvoice, ActionExport},

	{RoleProduct.subject(), ObjectCurrency, ActionView},
	{RoleProduct.subject(), ObjectCurrency, ActionConvert},
	{RoleProduct.subject(), ObjectPricing, ActionCalculate},
	{RoleProduct.subject(), ObjectRFQ, ActionView},
	{RoleProduct.subject(), ObjectRFQ, ActionStart},
	{RoleProduct.subject(), ObjectRFQ, ActionQueue},
	{RoleProduct.subject(), ObjectQuotation, ActionView},
	{RoleProduct.subject(), ObjectQuotation, ActionCreate},
	{RoleProduct.subject(), ObjectQuotation, ActionUpdate},
	{RoleProduct.subject(), ObjectQuotation, ActionSubmit},
	{RoleProduct.subject(), ObjectQuotation, ActionExpire},
	{RoleProduct.subject(), ObjectQuotation, ActionPrint},

	{RoleAdmin.subject(), ObjectCurrency, ActionManage},
}

var defaultGroupings = [][]string{
	{RoleAdmin.subject(), RoleSales.subject()},
	{RoleAdmin.subject(), RoleProduct.subject()},
}

// Authorizer checks role permissions with a casbin RBAC model
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
	logger   *zap.Logger
}

// NewGormAdapter persists policies in the casbin_rule table
func NewGormAdapter(db *gorm.DB) (persist.Adapter, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create policy adapter: %w", err)
	}
	return adapter, nil
}

// NewAuthorizer builds the enforcer and seeds the default policy. A nil
// adapter keeps the policy in memory only.
func NewAuthorizer(adapter persist.Adapter, logger *zap.Logger) (*Authorizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse policy model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if adapter != nil {
		enforcer, err = casbin.NewSyncedEnforcer(m, adapter)
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	if adapter != nil {
		enforcer.EnableAutoSave(true)
		if err := enforcer.LoadPolicy(); err != nil {
			return nil, fmt.Errorf("failed to load policy: %w", err)
		}
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, fmt.Errorf("failed to build role links: %w", err)
	}
	return &Authorizer{enforcer: enforcer, logger: logger}, nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	for _, p := range defaultPolicies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return fmt.Errorf("failed to seed policy %v: %w", p, err)
		}
	}
	for _, g := range defaultGroupings {
		if _, err := enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return fmt.Errorf("failed to seed role link %v: %w", g, err)
		}
	}
	return nil
}

// Authorize returns ErrForbidden when role may not perform action on object
func (a *Authorizer) Authorize(role Role, object, action string) error {
	if !role.IsValid() {
		return ErrForbidden
	}
	allowed, err := a.enforcer.Enforce(role.subject(), object, action)
	if err != nil {
		return fmt.Errorf("policy evaluation failed: %w", err)
	}
	if !allowed {
		a.logger.Debug("Access denied",
			zap.String("role", string(role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}
