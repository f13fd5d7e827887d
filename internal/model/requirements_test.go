package model

import (
	"testing"
)

func TestUserRequirements_IsComplete(t *testing.T) {
	tests := []struct {
		name string
		req  UserRequirements
		want bool
	}{
		{
			name: "empty",
			req:  UserRequirements{},
			want: false,
		},
		{
			name: "partial",
			req: UserRequirements{
				Location:    strPtr("Austin, TX"),
				ServiceType: serviceTypePtr(ServiceDirectCremation),
			},
			want: false,
		},
		{
			name: "complete",
			req: UserRequirements{
				Location:    strPtr("Austin, TX"),
				ServiceType: serviceTypePtr(ServiceDirectCremation),
				Timeframe:   timeframePtr(TimeframeImmediately),
				Preference:  preferencePtr(PreferenceCheapest),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.IsComplete(); got != tt.want {
				t.Errorf("IsComplete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserRequirements_MissingFields(t *testing.T) {
	req := UserRequirements{
		ServiceType: serviceTypePtr(ServiceTraditionalFuneral),
	}

	missing := req.MissingFields()

	// Order matters: prompts follow collection order
	want := []string{"location", "timeframe", "preference"}
	if len(missing) != len(want) {
		t.Fatalf("MissingFields() = %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("MissingFields()[%d] = %q, want %q", i, missing[i], want[i])
		}
	}
}

func TestParseServiceType(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   ServiceType
		wantOk bool
	}{
		{name: "exact", raw: "direct_cremation", want: ServiceDirectCremation, wantOk: true},
		{name: "uppercase", raw: "TRADITIONAL_FUNERAL", want: ServiceTraditionalFuneral, wantOk: true},
		{name: "whitespace", raw: "  cremation_memorial ", want: ServiceCremationMemorial, wantOk: true},
		{name: "unknown", raw: "viking_funeral", wantOk: false},
		{name: "empty", raw: "", wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseServiceType(tt.raw)
			if ok != tt.wantOk {
				t.Fatalf("ParseServiceType(%q) ok = %v, want %v", tt.raw, ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("ParseServiceType(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsAbsentValue(t *testing.T) {
	for _, raw := range []string{"", "NOT_SET", "not_set", "None", "NULL", " null "} {
		if !IsAbsentValue(raw) {
			t.Errorf("IsAbsentValue(%q) = false, want true", raw)
		}
	}
	for _, raw := range []string{"cheapest", "Austin", "immediately"} {
		if IsAbsentValue(raw) {
			t.Errorf("IsAbsentValue(%q) = true, want false", raw)
		}
	}
}

func TestUserRequirements_Clone(t *testing.T) {
	orig := UserRequirements{
		Location:   strPtr("Miami, FL"),
		Preference: preferencePtr(PreferenceNearest),
	}

	clone := orig.Clone()
	*clone.Location = "Austin, TX"
	clone.Timeframe = timeframePtr(TimeframeImmediately)

	if *orig.Location != "Miami, FL" {
		t.Errorf("Clone mutation leaked into original location: %q", *orig.Location)
	}
	if orig.Timeframe != nil {
		t.Error("Clone mutation leaked into original timeframe")
	}
}

func TestKeywordTableOrder(t *testing.T) {
	// "burial" belongs to traditional funeral and must be checked before
	// the direct-burial phrases that contain it
	if ServiceTypeKeywords[1].Value != ServiceTraditionalFuneral {
		t.Errorf("expected traditional_funeral second in table, got %q", ServiceTypeKeywords[1].Value)
	}
	if ServiceTypeKeywords[3].Value != ServiceDirectCremation {
		t.Errorf("expected direct_cremation last in table, got %q", ServiceTypeKeywords[3].Value)
	}
}

// Helper functions
func strPtr(v string) *string {
	return &v
}

func serviceTypePtr(v ServiceType) *ServiceType {
	return &v
}

func timeframePtr(v Timeframe) *Timeframe {
	return &v
}

func preferencePtr(v Preference) *Preference {
	return &v
}
