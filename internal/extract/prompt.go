package extract

import (
	"time"
)

// extractionTemperature keeps the model deterministic for structured output.
const extractionTemperature = 0.1

// buildExtractionPrompt renders the fixed extraction instructions around one
// alert email's text. receivedAt anchors relative or partial dates.
func buildExtractionPrompt(text string, receivedAt time.Time) string {
	basePrompt :=
		"You are a bank transaction alert parser.\n\n" +
			"Task:\n" +
			"- Read the bank alert email text below and extract the single transaction it describes.\n" +
			"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
			"- Output exactly one JSON object.\n\n" +
			"The object must have these fields:\n" +
			"- \"amount\": number, the transaction amount WITHOUT any currency symbol\n" +
			"- \"transaction_type\": string, exactly \"credit\" or \"debit\"\n" +
			"- \"card\": string or null, the masked card or account reference\n" +
			"- \"to\": string or null, the merchant, payee or counterparty\n" +
			"- \"transaction_reference_number\": string or null\n" +
			"- \"date\": string, the transaction date in \"YYYY-MM-DD\" format\n" +
			"- \"description\": string or null, any remaining detail worth keeping\n\n"

	rulesPrompt :=
		"Rules:\n" +
			"- Strip currency symbols and thousands separators from the amount; it must be a plain number.\n" +
			"- Dates like \"30-10-25\" are DD-MM-YY; convert to \"2025-10-30\" (two-digit years are 20xx).\n" +
			"- If the alert only says something like \"today\", use the email receipt date given below.\n" +
			"- Money leaving the account (spent, debited, withdrawn, paid) is \"debit\"; money arriving (received, credited, refunded) is \"credit\".\n" +
			"- Every field the alert does not state must be null, never omitted.\n\n" +
			"Return ONLY valid raw JSON.\n" +
			"Do NOT wrap the response in code fences.\n" +
			"Do NOT use ```json or any Markdown.\n" +
			"Output must begin with \"{\" and end with \"}\".\n\n"

	return basePrompt + rulesPrompt +
		"Email received at: " + receivedAt.Format("2006-01-02") + "\n\n" +
		"Alert email text:\n" + text + "\n"
}
