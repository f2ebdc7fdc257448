package tool

import "strings"

// healthTopics is the fixed knowledge lookup backing get_health_information.
// A query matches when it mentions a topic key; anything else is a miss, not
// an error.
var healthTopics = map[string]string{
	"diabetes": "Diabetes is a chronic condition that affects how the body turns food into energy. " +
		"Food is broken down into glucose and released into the bloodstream; rising blood sugar signals " +
		"the pancreas to release insulin, which lets cells use the glucose for energy. " +
		"Type 1 means the body makes no insulin, Type 2 means it does not use insulin well, and " +
		"gestational diabetes develops during pregnancy. Management combines monitoring, prescribed " +
		"medication, healthy eating, and physical activity.",

	"glucose": "Glucose is a simple sugar and a primary energy source for the body. " +
		"Typical blood glucose targets are 70-100 mg/dL fasting, 70-130 mg/dL before meals, and " +
		"under 180 mg/dL one to two hours after meals. Consistently high values can indicate diabetes " +
		"or prediabetes; consistently low values can indicate other health issues.",

	"hypertension": "Hypertension, or high blood pressure, is a common condition where the long-term " +
		"force of blood against artery walls is high enough to cause health problems such as heart " +
		"disease. Normal blood pressure is below 120/80 mm Hg; hypertension is 130/80 mm Hg or higher. " +
		"Lifestyle changes and medication can help control it.",

	"diet": "A healthy diet protects against chronic diseases such as heart disease, diabetes, and " +
		"cancer. It includes fruits, vegetables, legumes, nuts, and whole grains; at least 400 g of " +
		"fruits and vegetables per day; under 10% of energy from free sugars; under 30% from fats; and " +
		"under 5 g of salt per day. Individual needs vary with age, activity, and medical conditions.",

	"exercise": "Regular physical activity improves brain health, helps manage weight, reduces disease " +
		"risk, and strengthens bones and muscles. Adults should aim for at least 150 minutes a week of " +
		"moderate-intensity activity plus muscle-strengthening on two or more days. Some activity is " +
		"always better than none.",
}

// lookupHealthTopic returns the entry whose key appears in the query.
func lookupHealthTopic(query string) (string, bool) {
	lowered := strings.ToLower(query)
	for topic, info := range healthTopics {
		if strings.Contains(lowered, topic) {
			return info, true
		}
	}
	return "", false
}
