package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Condition operators supported by workflow rules
const (
	OperatorEquals      = "equals"
	OperatorGreaterThan = "greater_than"
	OperatorLessThan    = "less_than"
	OperatorIn          = "in"
	OperatorNotIn       = "not_in"
)

// Order attributes a workflow condition can match against
const (
	ConditionFieldAmount     = "amount"
	ConditionFieldSupplier   = "supplier"
	ConditionFieldDepartment = "department"
	ConditionFieldPriority   = "priority"
)

var ErrInvalidWorkflow = errors.New("invalid approval workflow")

// ApprovalWorkflow is a workflow template matched against purchase orders.
// Rules holds the ordered approval levels as JSONB.
type ApprovalWorkflow struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID    string         `gorm:"type:varchar(255);not null;index" json:"tenantId"`
	Name        string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_workflow_tenant_name" json:"name"`
	DisplayName string         `gorm:"type:varchar(255);not null" json:"displayName"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Rules       datatypes.JSON `gorm:"type:jsonb;not null" json:"rules"`
	IsActive    bool           `gorm:"default:true" json:"isActive"`
	IsSystem    bool           `gorm:"default:false" json:"isSystem"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for ApprovalWorkflow
func (ApprovalWorkflow) TableName() string {
	return "approval_workflows"
}

// RuleCondition compares an order attribute against a value.
// Value is a scalar for equals/greater_than/less_than and a list for in/not_in.
type RuleCondition struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// WorkflowRule is one approval level: its matching condition and the approvers
// who must all decide before the level resolves.
type WorkflowRule struct {
	Level     int           `json:"level"`
	Condition RuleCondition `json:"condition"`
	Approvers []uuid.UUID   `json:"approvers"`
}

// ParseRules decodes and returns the workflow's rules.
func (w *ApprovalWorkflow) ParseRules() ([]WorkflowRule, error) {
	var rules []WorkflowRule
	if err := json.Unmarshal(w.Rules, &rules); err != nil {
		return nil, fmt.Errorf("%w: malformed rules: %v", ErrInvalidWorkflow, err)
	}
	return rules, nil
}

// ValidateRules enforces the workflow invariant: at least one rule, levels
// contiguous starting at 1, and every level carrying at least one approver.
func ValidateRules(rules []WorkflowRule) error {
	if len(rules) == 0 {
		return fmt.Errorf("%w: at least one rule is required", ErrInvalidWorkflow)
	}
	for i, rule := range rules {
		if rule.Level != i+1 {
			return fmt.Errorf("%w: levels must be contiguous starting at 1 (rule %d has level %d)",
				ErrInvalidWorkflow, i, rule.Level)
		}
		if len(rule.Approvers) == 0 {
			return fmt.Errorf("%w: level %d has no approvers", ErrInvalidWorkflow, rule.Level)
		}
		switch rule.Condition.Operator {
		case OperatorEquals, OperatorGreaterThan, OperatorLessThan, OperatorIn, OperatorNotIn:
		default:
			return fmt.Errorf("%w: unknown operator %q at level %d",
				ErrInvalidWorkflow, rule.Condition.Operator, rule.Level)
		}
	}
	return nil
}
