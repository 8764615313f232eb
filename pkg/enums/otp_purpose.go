package enums

import "fmt"

// OtpPurpose describes the flow an emailed one-time code unlocks.
type OtpPurpose string

const (
	OtpPurposeCreateAdmin OtpPurpose = "create-admin"
	OtpPurposeResetPin    OtpPurpose = "reset-pin"
	OtpPurposeResetEmail  OtpPurpose = "reset-email"
)

var validOtpPurposes = []OtpPurpose{
	OtpPurposeCreateAdmin,
	OtpPurposeResetPin,
	OtpPurposeResetEmail,
}

// IsValid reports whether the value matches a known OTP purpose.
func (p OtpPurpose) IsValid() bool {
	for _, candidate := range validOtpPurposes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseOtpPurpose converts the raw string to OtpPurpose. An empty value
// defaults to admin creation, the only flow the first-run UI knows about.
func ParseOtpPurpose(value string) (OtpPurpose, error) {
	if value == "" {
		return OtpPurposeCreateAdmin, nil
	}
	for _, candidate := range validOtpPurposes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid otp purpose %q", value)
}
