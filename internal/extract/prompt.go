package extract

import "strings"

// BuildRowMatchPrompt returns the extraction prompt for a set of normalized
// target codes. Pure string construction; deterministic for a given code list.
func BuildRowMatchPrompt(codes []string) string {
	var condition string
	if len(codes) == 1 {
		condition = `the product code "` + codes[0] + `"`
	} else {
		condition = `ANY of these product codes: "` + strings.Join(codes, `", "`) + `"`
	}

	return `You are a document data extraction assistant. Analyze the provided image of a table and find every row whose leading identifying number matches ` + condition + `. Match on the number itself, regardless of how its column is labeled.

For each matching row, extract:
- "product_code": the matched identifying number, as printed.
- "business_reg_no": the business registration number paired with it in the same row, either in hyphenated 3-2-5 digit form (e.g. 123-45-67890) or as an unbroken 10-digit number. Use an empty string if the row has none.
- "company_name": the company or business name in the same row, if present.
- "row_index": the 1-based position of the row in the table, if determinable.

If no row matches, return an empty "items" array. Never invent rows or numbers that are not visible in the image.

Respond with ONLY a single JSON object in exactly this shape, with no markdown formatting, no code fences, and no explanation:
{
  "items": [
    {"product_code": "", "business_reg_no": "", "company_name": "", "row_index": 0}
  ],
  "total_found": 0,
  "confidence": 0.0
}

"total_found" is the number of matching rows you found. "confidence" is a single number between 0.0 and 1.0 estimating how likely the whole extraction is correct.`
}
