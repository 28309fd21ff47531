package generator

const systemPrompt = `You are an expert at analyzing online behavior and creating detailed user personas.`

const personaUserPrompt = `Analyze the following Reddit user data and create a detailed user persona.

%s

Generate a comprehensive user persona including:
1. Demographics (estimated age range, gender if apparent, location if mentioned)
2. Interests and hobbies
3. Professional background or expertise
4. Communication style
5. Values and beliefs
6. Online behavior patterns
7. Potential needs or pain points

Format the response as a JSON object with these categories as keys.
Return ONLY the JSON object, no markdown fences or other text.`

const (
	summaryPosts         = 20
	summaryComments      = 30
	summaryPostLength    = 200
	summaryCommentLength = 150

	temperature = 0.7
	maxTokens   = 1500
)
