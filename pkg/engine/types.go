// Package engine exposes the discount engine to other Go programs.
package engine

import (
	"service-discounts/internal/domain"
	"service-discounts/internal/infrastructure/snapshot"
	"service-discounts/internal/interfaces"
)

type (
	Settings          = domain.Settings
	LineItem          = domain.LineItem
	Company           = domain.Company
	GroupID           = domain.GroupID
	ProductID         = domain.ProductID
	DiscountMap       = domain.DiscountMap
	VolumeKey         = domain.VolumeKey
	VolumeEntry       = domain.VolumeEntry
	ExecutionStep     = domain.ExecutionStep
	GuardConfig       = domain.GuardConfig
	CalculationResult = domain.CalculationResult

	Request  = interfaces.CalculationRequest
	Snapshot = snapshot.Snapshot

	VolumeStore = interfaces.VolumeStore
	Notifier    = interfaces.Notifier
)

// DefaultSettings enables every program with the CRM's default field codes.
func DefaultSettings() Settings {
	return domain.DefaultSettings()
}
