package ingest

import "github.com/nostrbank/ledgerd/internal/txtype"

// FreshnessWindowSeconds is the default freshness floor applied to the
// subscription filter's "since" field (§5 "Cancellation and timeouts").
const FreshnessWindowSeconds = 86000

func allVariantTags() []string {
	tags := make([]string, 0, len(txtype.All))
	for _, v := range txtype.All {
		tags = append(tags, v.StartTag())
	}
	return tags
}
