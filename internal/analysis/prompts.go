package analysis

// ingredientAnalysisPrompt expects the ingredients, the restriction key and
// the hazard background, in that order.
const ingredientAnalysisPrompt = `You are a food safety and nutrition expert. Analyze the product ingredients for specific dietary requirements.

PRODUCT INGREDIENTS: %s
DIETARY REQUIREMENT: %s
HAZARD KNOWLEDGE: %s

Provide analysis in this exact format:
SUITABLE: [YES/NO]
RISK_LEVEL: [LOW/MEDIUM/HIGH]
HAZARDOUS_INGREDIENTS: [comma-separated list or "None"]
EXPLANATION: [Clear explanation based on scientific evidence]

Focus on:
- Scientific evidence from hazard knowledge
- Health impacts and risks
- Specific ingredients that violate dietary requirements
- Safety recommendations

Be precise and evidence-based in your analysis.
`

// brandInstruction is sent with a product photo to read its brand.
const brandInstruction = "WHAT IS THE BRAND NAME IN THIS PRODUCT? ANSWER ONLY WITH THE BRAND NAME. IF YOU CANNOT READ ONE, ANSWER UNKNOWN."
