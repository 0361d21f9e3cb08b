package ai

import (
	"encoding/json"
	"fmt"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
)

const storyPromptTemplate = `Create a compelling story based on this transcription: %q

Language: %s
Cultural Context: %s

Requirements:
1. Incorporate traditional craft elements and cultural heritage
2. Make it engaging and suitable for marketing artisan products
3. Preserve authentic cultural references and terminology
4. Keep the narrative authentic to the artisan's voice
5. Highlight the craftsmanship and traditional techniques

Write a beautiful, culturally-rich story that celebrates the artisan's craft.`

const marketInsightsPromptTemplate = `Generate comprehensive market insights for %s crafts in %s, India.

Artisan Context: %s

Provide detailed analysis covering:

1. CURRENT MARKET TRENDS
2. PRICING STRATEGIES (in INR, with regional variations)
3. CULTURAL CONSIDERATIONS (festival and seasonal demand)
4. GROWTH OPPORTUNITIES (online and export channels)
5. COMPETITIVE LANDSCAPE

Focus on actionable insights that help artisans succeed in the modern
marketplace while preserving cultural heritage.`

const seoPromptTemplate = `Analyze this product description for SEO optimization on %s:

%q

Respond with a single JSON object, no prose and no code fences, shaped as:
{"score": <0-100>, "keywords": [<top 5 keywords for Indian e-commerce>],
"metaTitle": "<under 60 characters>", "metaDescription": "<under 160 characters>",
"improvedDescription": "<rewritten description with better SEO>"}

Focus on Indian market keywords and search intent.`

const emailCampaignPromptTemplate = `Generate an email campaign of type %s targeting %s.

Respond with a single JSON object, no prose and no code fences, shaped as:
{"subjectSuggestions": [<3 compelling subject lines>], "emailBody": "<complete email body>"}

The content is for Indian artisans selling handicrafts. Make it culturally
appropriate and engaging for Indian customers.`

var imageOperationPrompts = map[enums.ImageOperation]string{
	enums.ImageOperationRemoveBG: "Remove the background from this artisan craft product, " +
		"keeping only the main subject with a transparent background. " +
		"Maintain the original quality and details.",
	enums.ImageOperationEnhance: "Enhance this artisan craft product image with better lighting, " +
		"improved colors, higher resolution, and professional quality. " +
		"Make it look studio-quality.",
	enums.ImageOperationGenerateMockup: "Create a professional e-commerce product mockup of this " +
		"artisan craft item. Place it on a clean white background with studio lighting, " +
		"multiple angles if possible, and make it look ready for online sales.",
}

// contextJSON renders a cultural/artisan context map for prompt embedding.
func contextJSON(context map[string]any) string {
	if len(context) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(context)
	if err != nil {
		return fmt.Sprintf("%v", context)
	}
	return string(raw)
}
