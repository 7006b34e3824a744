package extraction

func BuildMenuExtractPrompt(menuText string) string {
	return `
You are a data extraction engine for restaurant menus.

Your task:
- Convert the menu content into STRICT JSON.
- Output MUST be valid JSON.
- Output MUST start with { and end with }.
- Output MUST contain ONLY JSON.
- NO explanations.
- NO markdown.
- NO comments.
- NO extra text.
- All prices are integer cents (6.99 becomes 699).

If you cannot extract data, return this exact JSON:
{
  "categories": [],
  "option_groups": []
}

Required JSON schema:
{
  "categories": [
    {
      "name": "string",
      "description": "string",
      "items": [
        {
          "name": "string",
          "description": "string",
          "price_cents": number,
          "allergens": ["string"]
        }
      ]
    }
  ],
  "option_groups": [
    {
      "name": "string",
      "type": "single | multiple",
      "choices": [
        {
          "name": "string",
          "price_modifier_cents": number
        }
      ]
    }
  ]
}

MENU CONTENT:
` + menuText
}
