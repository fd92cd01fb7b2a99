package config

import "testing"

func TestLoggingConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoggingConfig
		wantErr bool
	}{
		{"valid json/info", LoggingConfig{Level: "info", Format: "json"}, false},
		{"valid text/debug", LoggingConfig{Level: "debug", Format: "text"}, false},
		{"invalid level", LoggingConfig{Level: "verbose", Format: "json"}, true},
		{"invalid format", LoggingConfig{Level: "info", Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
