package models

import (
	"fmt"
	"time"
)

// Program settings snapshot. Engines receive this explicitly and never
// read ambient state; consistency is validated on save, not on read.
type Settings struct {
	GoldThreshold      int64   `bson:"goldThreshold" json:"goldThreshold"`
	PlatinumThreshold  int64   `bson:"platinumThreshold" json:"platinumThreshold"`
	SilverMultiplier   float64 `bson:"silverMultiplier" json:"silverMultiplier"`
	GoldMultiplier     float64 `bson:"goldMultiplier" json:"goldMultiplier"`
	PlatinumMultiplier float64 `bson:"platinumMultiplier" json:"platinumMultiplier"`

	PointsPerCurrencyUnit float64 `bson:"pointsPerCurrencyUnit" json:"pointsPerCurrencyUnit"`
	RedemptionRateCents   int64   `bson:"redemptionRateCents" json:"redemptionRateCents"` // cents of value per redeemed point
	TaxRateBps            int64   `bson:"taxRateBps" json:"taxRateBps"`

	PointsExpiryEnabled bool `bson:"pointsExpiryEnabled" json:"pointsExpiryEnabled"`
	PointsExpiryMonths  int  `bson:"pointsExpiryMonths" json:"pointsExpiryMonths"`

	BirthdayBonusEnabled bool  `bson:"birthdayBonusEnabled" json:"birthdayBonusEnabled"`
	BirthdayBonusPoints  int64 `bson:"birthdayBonusPoints" json:"birthdayBonusPoints"`

	Timezone              string `bson:"timezone" json:"timezone"`
	NeverEndHorizonMonths int    `bson:"neverEndHorizonMonths" json:"neverEndHorizonMonths"`
}

// Validate runs the save-time consistency checks.
func (s Settings) Validate() error {
	if s.GoldThreshold < 0 {
		return &ValidationError{Reason: "gold threshold must not be negative"}
	}
	if s.PlatinumThreshold <= s.GoldThreshold {
		return &ValidationError{Reason: "platinum threshold must be greater than gold threshold"}
	}
	if s.SilverMultiplier > s.GoldMultiplier || s.GoldMultiplier > s.PlatinumMultiplier {
		return &ValidationError{Reason: "tier multipliers must be ascending"}
	}
	if s.SilverMultiplier <= 0 {
		return &ValidationError{Reason: "multipliers must be positive"}
	}
	if s.PointsPerCurrencyUnit < 0 {
		return &ValidationError{Reason: "points per currency unit must not be negative"}
	}
	if s.RedemptionRateCents < 0 {
		return &ValidationError{Reason: "redemption rate must not be negative"}
	}
	if s.PointsExpiryEnabled && s.PointsExpiryMonths <= 0 {
		return &ValidationError{Reason: "expiry months must be positive when expiry is enabled"}
	}
	if s.BirthdayBonusEnabled && s.BirthdayBonusPoints <= 0 {
		return &ValidationError{Reason: "birthday bonus points must be positive when the bonus is enabled"}
	}
	if s.NeverEndHorizonMonths < 0 {
		return &ValidationError{Reason: "horizon months must not be negative"}
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("unknown timezone %q", s.Timezone)}
		}
	}
	return nil
}

// Location resolves the salon timezone, defaulting to UTC.
func (s Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
