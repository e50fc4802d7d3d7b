package seeders

import (
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pedro17pedroo/SGST-sub000/internal/models"
)

// Placeholder approver seeded for the system workflow; tenants replace it
// with their own staff when they take the workflow over.
const systemApproverID = "00000000-0000-0000-0000-000000000001"

// SeedSystemWorkflows creates or updates system-level approval workflows.
// These workflows use tenant_id 'system' and are available to all tenants as fallback.
func SeedSystemWorkflows(db *gorm.DB) error {
	workflows := []models.ApprovalWorkflow{
		// Default two-level replenishment approval: a manager above the
		// auto-approval ceiling, a director above 2M AOA.
		{
			TenantID:    "system",
			Name:        "replenishment_approval",
			DisplayName: "Replenishment Order Approval",
			Description: "Default approval chain for auto-generated replenishment purchase orders",
			Rules: datatypes.JSON(`[
				{
					"level": 1,
					"condition": {"field": "amount", "operator": "greater_than", "value": 500000},
					"approvers": ["` + systemApproverID + `"]
				},
				{
					"level": 2,
					"condition": {"field": "amount", "operator": "greater_than", "value": 2000000},
					"approvers": ["` + systemApproverID + `"]
				}
			]`),
			IsSystem: true,
			IsActive: true,
		},
		// Urgent orders always get a manager's eyes regardless of amount.
		{
			TenantID:    "system",
			Name:        "urgent_order_review",
			DisplayName: "Urgent Order Review",
			Description: "Review chain for urgent-priority purchase orders",
			Rules: datatypes.JSON(`[
				{
					"level": 1,
					"condition": {"field": "priority", "operator": "in", "value": ["urgent"]},
					"approvers": ["` + systemApproverID + `"]
				}
			]`),
			IsSystem: true,
			IsActive: true,
		},
	}

	for _, workflow := range workflows {
		// Use upsert (ON CONFLICT DO UPDATE) to create or update
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "description", "rules", "updated_at"}),
		}).Create(&workflow)

		if result.Error != nil {
			log.Printf("Failed to seed workflow %s: %v", workflow.Name, result.Error)
			return result.Error
		}
		log.Printf("Seeded workflow: %s (tenant: %s)", workflow.Name, workflow.TenantID)
	}

	return nil
}
