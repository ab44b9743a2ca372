package extraction

// tuplePrompt asks for a bare JSON array. Structured output mode is not
// used here because the contract is an array, and the JSON-object
// response format would force a wrapper object.
const tuplePrompt = `You are a semantic tuple extractor. Given user behavior or statements, extract structured relationships.

Output ONLY valid JSON array of tuples. Each tuple has:
- subject: The entity performing or being described (usually "User")
- subject_type: Type of subject (Person, Product, etc.)
- predicate: The relationship (PREFERS, HAS_GOAL, HAS_CONSTRAINT, LIKES, DISLIKES, WANTS, AVOIDS)
- object: The target entity
- object_type: Type of object (Diet, Budget, Restaurant, Food, Product, etc.)
- confidence: 0.0 to 1.0 based on how certain the statement is
- properties: Additional key-value properties if relevant

Examples:

Input: "I'm trying to stay under $50 this month for protein powder"
Output: [{"subject": "User", "subject_type": "Person", "predicate": "HAS_GOAL", "object": "Budget $50", "object_type": "Budget", "confidence": 0.9, "properties": {"category": "Supplements", "timeframe": "monthly", "value": 50}}]

Input: "I started a vegan diet 3 days ago"
Output: [{"subject": "User", "subject_type": "Person", "predicate": "HAS_CONSTRAINT", "object": "Vegan Diet", "object_type": "Diet", "confidence": 1.0, "properties": {"started_days_ago": 3, "restriction": "no animal products"}}]

Input: "User browsed Steakhouse X on Yelp"
Output: [{"subject": "User", "subject_type": "Person", "predicate": "INTERESTED_IN", "object": "Steakhouse X", "object_type": "Restaurant", "confidence": 0.6, "properties": {"cuisine": "Steakhouse", "source": "Yelp"}}]

Now extract tuples from:
Input: "%s"

Output ONLY the JSON array, no other text:`
