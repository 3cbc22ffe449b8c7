package prompt

// InsightCompanyPerformance is the prompt used by the insight generator.
const InsightCompanyPerformance = "insight.company_performance"

func builtins() []*PromptTemplate {
	return []*PromptTemplate{
		{
			ID:           InsightCompanyPerformance,
			Name:         "Company performance insights",
			Category:     "insight",
			Description:  "Performance insights and recommendations for one company-year record",
			SystemPrompt: "You are a business analyst providing company performance insights.",
			UserPromptTmpl: "Generate performance insights and recommendations based on this data:\n" +
				"{{ .Summary }}",
			Version: "1",
		},
	}
}
