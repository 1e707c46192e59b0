package catalog

// Promotion is a home page banner.
type Promotion struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	Description     string `json:"description"`
	ImageURL        string `json:"image_url"`
	ButtonText      string `json:"button_text"`
	ButtonLink      string `json:"button_link"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
}

var promotions = []Promotion{
	{
		ID:              1,
		Title:           "Welcome to ShopHub",
		Subtitle:        "Discover amazing products at unbeatable prices",
		Description:     "Shop the latest trends and essentials with our wide selection of products",
		ImageURL:        "https://images.unsplash.com/photo-1441986300917-64674bd600d8?w=800&h=400&fit=crop",
		ButtonText:      "Shop Now",
		ButtonLink:      "/products",
		BackgroundColor: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
		TextColor:       "white",
	},
	{
		ID:              2,
		Title:           "New Arrivals",
		Subtitle:        "Check out our latest collection",
		Description:     "Explore trending products and exclusive deals",
		ImageURL:        "https://images.unsplash.com/photo-1441984904996-e0b6ba687e04?w=800&h=400&fit=crop",
		ButtonText:      "Explore New Products",
		ButtonLink:      "/products",
		BackgroundColor: "linear-gradient(135deg, #f093fb 0%, #f5576c 100%)",
		TextColor:       "white",
	},
}

// Promotions returns a copy of the static banner list.
func Promotions() []Promotion {
	out := make([]Promotion, len(promotions))
	copy(out, promotions)
	return out
}
