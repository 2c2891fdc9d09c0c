package notionsync

import (
	"github.com/jomei/notionapi"

	"github.com/nmisal/mailspend/internal/domain"
)

// Property names in the target Notion database.
const (
	propName            = "Name"
	propAmount          = "Amount"
	propType            = "Type"
	propCategory        = "Category"
	propSubCategory     = "Sub Category"
	propDate            = "Date"
	propSourceMessageID = "Source Message ID"
	propReference       = "Reference"
)

// transactionToProperties maps one committed transaction onto the Notion
// database schema. Source Message ID carries the dedup key.
func transactionToProperties(tx domain.ExtractedTransaction) notionapi.Properties {
	title := "Transaction"
	if tx.Counterparty != nil {
		title = *tx.Counterparty
	} else if tx.Description != nil {
		title = *tx.Description
	}

	date := notionapi.Date(tx.TransactionDate)

	props := notionapi.Properties{
		propName: notionapi.TitleProperty{
			Title: richText(title),
		},
		propAmount: notionapi.NumberProperty{
			Number: tx.Amount,
		},
		propType: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Type)},
		},
		propCategory: notionapi.SelectProperty{
			Select: notionapi.Option{Name: tx.Category},
		},
		propDate: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &date},
		},
		propSourceMessageID: notionapi.RichTextProperty{
			RichText: richText(tx.SourceMessageID),
		},
	}

	if tx.SubCategory != nil {
		props[propSubCategory] = notionapi.RichTextProperty{
			RichText: richText(*tx.SubCategory),
		}
	}
	if tx.ReferenceNo != nil {
		props[propReference] = notionapi.RichTextProperty{
			RichText: richText(*tx.ReferenceNo),
		}
	}

	return props
}

// extractSourceMessageID pulls the dedup key back out of a Notion page.
func extractSourceMessageID(page notionapi.Page) string {
	prop, ok := page.Properties[propSourceMessageID]
	if !ok {
		return ""
	}
	rt, ok := prop.(*notionapi.RichTextProperty)
	if !ok {
		return ""
	}
	var out string
	for _, t := range rt.RichText {
		out += t.PlainText
	}
	return out
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{Text: &notionapi.Text{Content: content}},
	}
}
