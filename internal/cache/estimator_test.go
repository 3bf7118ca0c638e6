package cache

import "testing"

type stringerValue struct{ s string }

func (v stringerValue) String() string { return v.s }

func TestDefaultSizeEstimator(t *testing.T) {
	est := DefaultSizeEstimator{}

	tests := []struct {
		name    string
		value   interface{}
		want    int64
		wantErr bool
	}{
		{"byte slice", []byte("hello"), 5, false},
		{"string", "hello world", 11, false},
		{"bool", true, 1, false},
		{"int16", int16(1), 2, false},
		{"int32", int32(1), 4, false},
		{"int", 42, 8, false},
		{"float64", 3.14, 8, false},
		{"stringer", stringerValue{"abcd"}, 4, false},
		{"struct via json", struct {
			A int `json:"a"`
		}{7}, 7, false}, // {"a":7}
		{"nil", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := est.Estimate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Estimate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Estimate(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestDefaultSizeEstimator_Unmarshalable(t *testing.T) {
	est := DefaultSizeEstimator{}
	if _, err := est.Estimate(make(chan int)); err == nil {
		t.Error("expected an error for a channel value")
	}
}
