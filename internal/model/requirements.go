package model

import "strings"

// ServiceType represents the kind of funeral service the user is looking for
type ServiceType string

const (
	ServiceCremationMemorial  ServiceType = "cremation_memorial"
	ServiceTraditionalFuneral ServiceType = "traditional_funeral"
	ServiceDirectBurial       ServiceType = "direct_burial"
	ServiceDirectCremation    ServiceType = "direct_cremation"
)

// Timeframe represents how soon the user needs services
type Timeframe string

const (
	TimeframeImmediately     Timeframe = "immediately"
	TimeframeWithinFourWeeks Timeframe = "within_next_four_weeks"
	TimeframeWithinSixMonths Timeframe = "likely_within_six_months"
	TimeframeFuturePlanning  Timeframe = "planning_for_the_future"
)

// Preference represents what the user optimizes for when choosing a home
type Preference string

const (
	PreferenceCheapest Preference = "cheapest"
	PreferenceNearest  Preference = "nearest"
)

// sentinel values some models emit for "field not provided"
var absentSentinels = map[string]bool{
	"":        true,
	"not_set": true,
	"none":    true,
	"null":    true,
}

// IsAbsentValue reports whether a raw extracted value means "not provided"
func IsAbsentValue(raw string) bool {
	return absentSentinels[strings.ToLower(strings.TrimSpace(raw))]
}

// ParseServiceType parses a raw extracted value into a ServiceType.
// Returns ok=false for unknown values; absent-sentinels are not valid here,
// callers check IsAbsentValue first.
func ParseServiceType(raw string) (ServiceType, bool) {
	switch ServiceType(strings.ToLower(strings.TrimSpace(raw))) {
	case ServiceCremationMemorial:
		return ServiceCremationMemorial, true
	case ServiceTraditionalFuneral:
		return ServiceTraditionalFuneral, true
	case ServiceDirectBurial:
		return ServiceDirectBurial, true
	case ServiceDirectCremation:
		return ServiceDirectCremation, true
	}
	return "", false
}

// ParseTimeframe parses a raw extracted value into a Timeframe
func ParseTimeframe(raw string) (Timeframe, bool) {
	switch Timeframe(strings.ToLower(strings.TrimSpace(raw))) {
	case TimeframeImmediately:
		return TimeframeImmediately, true
	case TimeframeWithinFourWeeks:
		return TimeframeWithinFourWeeks, true
	case TimeframeWithinSixMonths:
		return TimeframeWithinSixMonths, true
	case TimeframeFuturePlanning:
		return TimeframeFuturePlanning, true
	}
	return "", false
}

// ParsePreference parses a raw extracted value into a Preference
func ParsePreference(raw string) (Preference, bool) {
	switch Preference(strings.ToLower(strings.TrimSpace(raw))) {
	case PreferenceCheapest:
		return PreferenceCheapest, true
	case PreferenceNearest:
		return PreferenceNearest, true
	}
	return "", false
}

// UserRequirements holds the four pieces of information needed before a search
type UserRequirements struct {
	Location    *string      `json:"location,omitempty"`
	ServiceType *ServiceType `json:"service_type,omitempty"`
	Timeframe   *Timeframe   `json:"timeframe,omitempty"`
	Preference  *Preference  `json:"preference,omitempty"`
}

// IsComplete reports whether all required information has been collected
func (r *UserRequirements) IsComplete() bool {
	return r.Location != nil && r.ServiceType != nil && r.Timeframe != nil && r.Preference != nil
}

// MissingFields returns the missing field names in collection order
func (r *UserRequirements) MissingFields() []string {
	missing := []string{}
	if r.Location == nil {
		missing = append(missing, "location")
	}
	if r.ServiceType == nil {
		missing = append(missing, "service_type")
	}
	if r.Timeframe == nil {
		missing = append(missing, "timeframe")
	}
	if r.Preference == nil {
		missing = append(missing, "preference")
	}
	return missing
}

// HasAny reports whether at least one field has been collected
func (r *UserRequirements) HasAny() bool {
	return r.Location != nil || r.ServiceType != nil || r.Timeframe != nil || r.Preference != nil
}

// Clone returns a deep copy so turn processing can diff against the pre-turn value
func (r *UserRequirements) Clone() *UserRequirements {
	c := &UserRequirements{}
	if r.Location != nil {
		v := *r.Location
		c.Location = &v
	}
	if r.ServiceType != nil {
		v := *r.ServiceType
		c.ServiceType = &v
	}
	if r.Timeframe != nil {
		v := *r.Timeframe
		c.Timeframe = &v
	}
	if r.Preference != nil {
		v := *r.Preference
		c.Preference = &v
	}
	return c
}

// LocationValue returns the location or "" when unset
func (r *UserRequirements) LocationValue() string {
	if r.Location == nil {
		return ""
	}
	return *r.Location
}

// Display names for user-facing text
var ServiceTypeDisplay = map[ServiceType]string{
	ServiceCremationMemorial:  "Cremation Memorial",
	ServiceTraditionalFuneral: "Traditional Funeral",
	ServiceDirectBurial:       "Direct Burial",
	ServiceDirectCremation:    "Direct Cremation",
}

var TimeframeDisplay = map[Timeframe]string{
	TimeframeImmediately:     "Immediately",
	TimeframeWithinFourWeeks: "Within the next 4 weeks",
	TimeframeWithinSixMonths: "Likely within 6 months",
	TimeframeFuturePlanning:  "Planning for the future",
}

var PreferenceDisplay = map[Preference]string{
	PreferenceCheapest: "Cheapest options",
	PreferenceNearest:  "Nearest locations",
}

// ServiceTypeKeywords maps each service type to its trigger phrases, checked in order
var ServiceTypeKeywords = []struct {
	Value    ServiceType
	Keywords []string
}{
	{ServiceCremationMemorial, []string{"cremation memorial", "memorial service", "cremation with service"}},
	{ServiceTraditionalFuneral, []string{"traditional funeral", "full service", "funeral service", "burial"}},
	{ServiceDirectBurial, []string{"direct burial", "simple burial", "burial without service"}},
	{ServiceDirectCremation, []string{"direct cremation", "simple cremation", "cremation without service"}},
}

// TimeframeKeywords maps each timeframe to its trigger phrases, checked in order
var TimeframeKeywords = []struct {
	Value    Timeframe
	Keywords []string
}{
	{TimeframeImmediately, []string{"immediately", "asap", "right away", "urgent", "now"}},
	{TimeframeWithinFourWeeks, []string{"soon", "few weeks", "month", "4 weeks", "within weeks"}},
	{TimeframeWithinSixMonths, []string{"6 months", "half year", "few months", "this year"}},
	{TimeframeFuturePlanning, []string{"future", "planning ahead", "not urgent", "someday"}},
}

// PreferenceKeywords maps each preference to its trigger phrases, checked in order
var PreferenceKeywords = []struct {
	Value    Preference
	Keywords []string
}{
	{PreferenceCheapest, []string{"cheapest", "affordable", "budget", "low cost", "inexpensive", "cheap"}},
	{PreferenceNearest, []string{"nearest", "close", "nearby", "closest", "convenient", "near"}},
}
