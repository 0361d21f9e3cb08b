package enums

import "fmt"

// ImageOperation names the supported image processing operations.
type ImageOperation string

const (
	ImageOperationRemoveBG       ImageOperation = "remove_bg"
	ImageOperationEnhance        ImageOperation = "enhance"
	ImageOperationGenerateMockup ImageOperation = "generate_mockup"
)

var validImageOperations = []ImageOperation{
	ImageOperationRemoveBG,
	ImageOperationEnhance,
	ImageOperationGenerateMockup,
}

// String implements fmt.Stringer.
func (o ImageOperation) String() string {
	return string(o)
}

// IsValid reports whether the value is a known ImageOperation.
func (o ImageOperation) IsValid() bool {
	for _, candidate := range validImageOperations {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseImageOperation converts raw input into an ImageOperation.
func ParseImageOperation(value string) (ImageOperation, error) {
	for _, candidate := range validImageOperations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid image operation %q", value)
}

// SEOPlatform names the platforms the SEO optimizer targets.
type SEOPlatform string

const (
	SEOPlatformGoogle    SEOPlatform = "google"
	SEOPlatformFacebook  SEOPlatform = "facebook"
	SEOPlatformInstagram SEOPlatform = "instagram"
	SEOPlatformAmazon    SEOPlatform = "amazon"
)

var validSEOPlatforms = []SEOPlatform{
	SEOPlatformGoogle,
	SEOPlatformFacebook,
	SEOPlatformInstagram,
	SEOPlatformAmazon,
}

// String implements fmt.Stringer.
func (p SEOPlatform) String() string {
	return string(p)
}

// IsValid reports whether the value is a known SEOPlatform.
func (p SEOPlatform) IsValid() bool {
	for _, candidate := range validSEOPlatforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseSEOPlatform converts raw input into a SEOPlatform.
func ParseSEOPlatform(value string) (SEOPlatform, error) {
	for _, candidate := range validSEOPlatforms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid seo platform %q", value)
}

// CampaignType names the email campaign templates.
type CampaignType string

const (
	CampaignTypeSeasonal   CampaignType = "seasonal"
	CampaignTypeNewArrival CampaignType = "new_arrival"
	CampaignTypePromotion  CampaignType = "promotion"
	CampaignTypeNewsletter CampaignType = "newsletter"
)

var validCampaignTypes = []CampaignType{
	CampaignTypeSeasonal,
	CampaignTypeNewArrival,
	CampaignTypePromotion,
	CampaignTypeNewsletter,
}

// String implements fmt.Stringer.
func (t CampaignType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known CampaignType.
func (t CampaignType) IsValid() bool {
	for _, candidate := range validCampaignTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseCampaignType converts raw input into a CampaignType.
func ParseCampaignType(value string) (CampaignType, error) {
	for _, candidate := range validCampaignTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid campaign type %q", value)
}
