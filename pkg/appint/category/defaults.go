package category

// Names of the default integration categories.
const (
	ShopifyNative = "shopify_native"
	Marketplace   = "marketplace"
	Marketing     = "marketing"
	Shipping      = "shipping"
	Payment       = "payment"
	Analytics     = "analytics"
	Social        = "social"
	Other         = "other"
)

// DefaultCategoryRules groups integrations by the kind of service they
// connect to. Use with fallback Other.
func DefaultCategoryRules() []Rule {
	return []Rule{
		{Name: ShopifyNative, Prefixes: []string{"shopify"}},
		{Name: Marketplace, Keywords: []string{"amazon", "ebay", "etsy", "walmart"}},
		{Name: Marketing, Keywords: []string{"email", "marketing", "klaviyo", "mailchimp", "campaign"}},
		{Name: Shipping, Keywords: []string{"shipping", "delivery", "fulfillment", "ups", "fedex"}},
		{Name: Payment, Keywords: []string{"pay", "payment", "stripe", "paypal"}},
		{Name: Analytics, Keywords: []string{"analytics", "tracking", "pixel"}},
		{Name: Social, Keywords: []string{"facebook", "instagram", "tiktok", "twitter", "social"}},
	}
}

// DefaultPurposeFallback is assigned when no purpose rule matches.
const DefaultPurposeFallback = "Other/Custom Integration"

// DefaultPurposeRules guess what an integration is used for from its name,
// then from the integrations it appears with.
func DefaultPurposeRules() []Rule {
	return []Rule{
		{Name: "API/SDK Integration", Keywords: []string{"api", "sdk", "connector"}},
		{Name: "Data Synchronization", Keywords: []string{"sync", "import", "export"}},
		{Name: "Customer Support", Keywords: []string{"chat", "support", "help"}},
		{Name: "Analytics/Tracking", Keywords: []string{"track", "monitor", "analytics"}},
		{Name: "Shipping/Logistics", Keywords: []string{"ship", "delivery", "carrier"}},
		{Name: "Payment Processing", Keywords: []string{"pay", "payment", "checkout"}},
		{Name: "Marketing", Keywords: []string{"market", "ads", "campaign"}},
		{Name: "Social Media", Keywords: []string{"social", "facebook", "instagram", "twitter"}},
		{Name: "Business Operations", Keywords: []string{"erp", "accounting", "inventory"}},
		{Name: "Shopify Extension", CoKeywords: []string{"shopify"}},
	}
}

// Default returns the category Categorizer.
func Default() *Categorizer {
	c, err := New(DefaultCategoryRules(), Other)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultPurposes returns the purpose Categorizer.
func DefaultPurposes() *Categorizer {
	c, err := New(DefaultPurposeRules(), DefaultPurposeFallback)
	if err != nil {
		panic(err)
	}
	return c
}
