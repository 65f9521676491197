package httppresentation

import (
	"encoding/json"
	"errors"
	"time"

	appcart "github.com/Zhima-Mochi/corralon-storefront/internal/application/cart"
	domcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	domstore "github.com/Zhima-Mochi/corralon-storefront/internal/domain/storefront"
	"github.com/shopspring/decimal"
)

// Money is encoded as a JSON string by decimal.Decimal.

type cartItemResponse struct {
	ProductID    string          `json:"product_id"`
	Title        string          `json:"title"`
	Image        string          `json:"image,omitempty"`
	StoreID      string          `json:"store_id"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	StockCeiling int             `json:"stock_ceiling"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type lastAddedResponse struct {
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Seq       uint64    `json:"seq"`
	At        time.Time `json:"at"`
}

type cartResponse struct {
	SessionID string             `json:"session_id"`
	StoreID   string             `json:"store_id,omitempty"`
	Items     []cartItemResponse `json:"items"`
	Total     decimal.Decimal    `json:"total"`
	Units     int                `json:"units"`
	HasItems  bool               `json:"has_items"`
	LastAdded *lastAddedResponse `json:"last_added,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toCartResponse(v appcart.View) cartResponse {
	items := make([]cartItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		p := item.Product()
		items = append(items, cartItemResponse{
			ProductID:    p.ID,
			Title:        p.Title,
			Image:        p.Image,
			StoreID:      p.StoreID,
			UnitPrice:    p.UnitPrice,
			StockCeiling: p.StockCeiling,
			Quantity:     item.Quantity(),
			Subtotal:     item.Subtotal(),
		})
	}
	resp := cartResponse{
		SessionID: v.SessionID,
		StoreID:   v.StoreID,
		Items:     items,
		Total:     v.Total,
		Units:     v.Units,
		HasItems:  v.HasItems(),
		UpdatedAt: v.UpdatedAt,
	}
	if v.LastAdded != nil {
		resp.LastAdded = &lastAddedResponse{
			ProductID: v.LastAdded.ProductID,
			Quantity:  v.LastAdded.Quantity,
			Seq:       v.LastAdded.Seq,
			At:        v.LastAdded.At,
		}
	}
	return resp
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type switchStoreRequest struct {
	StoreID string `json:"store_id"`
	Confirm bool   `json:"confirm"`
}

type productResponse struct {
	ID                 string          `json:"id"`
	StoreID            string          `json:"store_id"`
	OwnerID            string          `json:"owner_id,omitempty"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	Category           string          `json:"category"`
	Brand              string          `json:"brand,omitempty"`
	SKU                string          `json:"sku,omitempty"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage float64         `json:"discount_percentage"`
	Rating             float64         `json:"rating"`
	Stock              int             `json:"stock"`
	StockStatus        string          `json:"stock_status"`
	Tags               []string        `json:"tags"`
	Images             []string        `json:"images"`
	Thumbnail          string          `json:"thumbnail,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func toProductResponse(p *domcatalog.Product) productResponse {
	return productResponse{
		ID:                 p.ID,
		StoreID:            p.StoreID,
		OwnerID:            p.OwnerID,
		Title:              p.Title,
		Description:        p.Description,
		Category:           domcatalog.Capitalize(p.Category),
		Brand:              p.Brand,
		SKU:                p.SKU,
		Price:              p.Price,
		DiscountPercentage: p.DiscountPercentage,
		Rating:             p.Rating,
		Stock:              p.Stock,
		StockStatus:        string(p.StockStatus()),
		Tags:               nonNil(p.Tags),
		Images:             nonNil(p.Images),
		Thumbnail:          p.Image(),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toProductList(products []*domcatalog.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

// priceField accepts a JSON number or a string such as "1.234,50".
type priceField string

func (p *priceField) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = priceField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("price must be a number or a string")
	}
	*p = priceField(n.String())
	return nil
}

type productRequest struct {
	StoreID            string     `json:"store_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Brand              string     `json:"brand"`
	SKU                string     `json:"sku"`
	Price              priceField `json:"price"`
	DiscountPercentage float64    `json:"discount_percentage"`
	Rating             float64    `json:"rating"`
	Stock              int        `json:"stock"`
	Tags               []string   `json:"tags"`
	Images             []string   `json:"images"`
	Thumbnail          string     `json:"thumbnail"`
}

type statsResponse struct {
	Products       int             `json:"products"`
	OutOfStock     int             `json:"out_of_stock"`
	LowStock       int             `json:"low_stock"`
	Units          int             `json:"units"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
}

type storefrontResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Address         string            `json:"address,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Email           string            `json:"email,omitempty"`
	Logo            string            `json:"logo,omitempty"`
	Banner          string            `json:"banner,omitempty"`
	Rating          float64           `json:"rating"`
	ReviewsCount    int               `json:"reviews_count"`
	Tags            []string          `json:"tags"`
	SocialMedia     map[string]string `json:"social_media,omitempty"`
	PaymentMethods  []string          `json:"payment_methods"`
	ShippingMethods []string          `json:"shipping_methods"`
	IsOpen          bool              `json:"is_open"`
	OpeningHours    map[string]string `json:"opening_hours,omitempty"`
}

func toStorefrontResponse(s *domstore.Storefront) storefrontResponse {
	social := compact(map[string]string{
		"facebook":  s.SocialMedia.Facebook,
		"instagram": s.SocialMedia.Instagram,
		"twitter":   s.SocialMedia.Twitter,
		"linkedin":  s.SocialMedia.LinkedIn,
	})
	hours := compact(map[string]string{
		"monday":    s.OpeningHours.Monday,
		"tuesday":   s.OpeningHours.Tuesday,
		"wednesday": s.OpeningHours.Wednesday,
		"thursday":  s.OpeningHours.Thursday,
		"friday":    s.OpeningHours.Friday,
		"saturday":  s.OpeningHours.Saturday,
		"sunday":    s.OpeningHours.Sunday,
	})
	return storefrontResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		Address:         s.Address,
		Phone:           s.Phone,
		Email:           s.Email,
		Logo:            s.Logo,
		Banner:          s.Banner,
		Rating:          s.Rating,
		ReviewsCount:    s.ReviewsCount,
		Tags:            nonNil(s.Tags),
		SocialMedia:     social,
		PaymentMethods:  nonNil(s.PaymentMethods),
		ShippingMethods: nonNil(s.ShippingMethods),
		IsOpen:          s.IsOpen,
		OpeningHours:    hours,
	}
}

type contactRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Province string `json:"province"`
	City     string `json:"city"`
}

type checkoutRequest struct {
	Shipping      string         `json:"shipping"`
	PaymentMethod string         `json:"payment_method"`
	Contact       contactRequest `json:"contact"`
}

type orderLineResponse struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	StoreID       string              `json:"store_id"`
	Status        string              `json:"status"`
	FailureReason string              `json:"failure_reason,omitempty"`
	Lines         []orderLineResponse `json:"lines"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	ShippingCost  decimal.Decimal     `json:"shipping_cost"`
	Total         decimal.Decimal     `json:"total"`
	Shipping      string              `json:"shipping"`
	PaymentMethod string              `json:"payment_method"`
	Contact       contactRequest      `json:"contact"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func toOrderResponse(o *domorder.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineResponse(l))
	}
	return orderResponse{
		ID:            o.ID,
		StoreID:       o.StoreID,
		Status:        string(o.Status),
		FailureReason: o.FailureReason,
		Lines:         lines,
		Subtotal:      o.Subtotal,
		ShippingCost:  o.ShippingCost,
		Total:         o.Total,
		Shipping:      string(o.Shipping),
		PaymentMethod: string(o.PaymentMethod),
		Contact:       contactRequest(o.Contact),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func compact(m map[string]string) map[string]string {
	for k, v := range m {
		if v == "" {
			delete(m, k)
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
