package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/angelmondragon/orgshop-backend/pkg/errors"
)

const (
	// variantSeparator splits "Org Hoodie - Black / L" into the base
	// product name and the variant label.
	variantSeparator = "-"

	// optionSeparator splits a variant label into color and size.
	optionSeparator = "/"

	defaultVariantLabel = "Default"

	// dropShipInventory is reported for products fulfilled by the print
	// partner, where stock is effectively unbounded on our side.
	dropShipInventory = 999

	metaPrintfulProductID = "printful_product_id"
	metaPrintfulVariantID = "printful_variant_id"
	metaCategory          = "category"
	metaInventory         = "inventory"
)

// Service exposes the storefront product listing.
type Service interface {
	ListProducts(ctx context.Context) ([]ProductDTO, error)
}

type productLister interface {
	ListActiveProducts(ctx context.Context) ([]*stripe.Product, error)
}

type service struct {
	catalog productLister
}

// NewService constructs a catalog service instance.
func NewService(catalog productLister) (Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("product lister required")
	}
	return &service{catalog: catalog}, nil
}

// ListProducts fetches the active payment catalog and folds variant
// listings into logical products. Listings sharing the same base name
// (the text before the first " - ") form one product; the first listing
// in a group supplies the product-level fields.
func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	listings, err := s.catalog.ListActiveProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to fetch products")
	}

	grouped := make(map[string]*ProductDTO)
	order := make([]string, 0, len(listings))

	for _, listing := range listings {
		if listing == nil {
			continue
		}
		base, _ := splitVariantName(listing.Name)

		product, ok := grouped[base]
		if !ok {
			dto := buildProduct(base, listing)
			grouped[base] = &dto
			product = grouped[base]
			order = append(order, base)
		}

		product.Variants = append(product.Variants, buildVariant(listing))
	}

	products := make([]ProductDTO, 0, len(order))
	for _, base := range order {
		products = append(products, *grouped[base])
	}
	return products, nil
}

func buildProduct(base string, rep *stripe.Product) ProductDTO {
	return ProductDTO{
		ID:              rep.ID,
		Name:            base,
		Description:     rep.Description,
		PriceCents:      priceCents(rep.DefaultPrice),
		ImageURL:        firstImage(rep),
		Category:        rep.Metadata[metaCategory],
		StripeProductID: rep.ID,
		StripePriceID:   priceID(rep.DefaultPrice),
		Inventory:       inventoryFor(rep),
		IsActive:        rep.Active,
	}
}

func buildVariant(listing *stripe.Product) VariantDTO {
	_, label := splitVariantName(listing.Name)
	color, size := splitVariantLabel(label)

	return VariantDTO{
		ID:                listing.ID,
		Name:              label,
		Color:             color,
		Size:              size,
		PriceCents:        priceCents(listing.DefaultPrice),
		StripeProductID:   listing.ID,
		StripePriceID:     priceID(listing.DefaultPrice),
		PrintfulVariantID: listing.Metadata[metaPrintfulVariantID],
		IsAvailable:       listing.Active,
	}
}

// splitVariantName cuts a listing display name into its base product
// name and variant label. A name without the separator is its own
// group of one with the default label.
func splitVariantName(name string) (base, label string) {
	base, label, found := strings.Cut(name, " "+variantSeparator+" ")
	base = strings.TrimSpace(base)
	if !found || strings.TrimSpace(label) == "" {
		return base, defaultVariantLabel
	}
	return base, strings.TrimSpace(label)
}

func splitVariantLabel(label string) (color, size string) {
	color, size, found := strings.Cut(label, " "+optionSeparator+" ")
	color = strings.TrimSpace(color)
	if !found || strings.TrimSpace(size) == "" {
		return color, defaultVariantLabel
	}
	return color, strings.TrimSpace(size)
}

func inventoryFor(rep *stripe.Product) int {
	if rep.Metadata[metaPrintfulProductID] != "" {
		return dropShipInventory
	}
	count, err := strconv.Atoi(rep.Metadata[metaInventory])
	if err != nil || count < 0 {
		return 0
	}
	return count
}

func priceCents(price *stripe.Price) int64 {
	if price == nil {
		return 0
	}
	return price.UnitAmount
}

func priceID(price *stripe.Price) string {
	if price == nil {
		return ""
	}
	return price.ID
}

func firstImage(p *stripe.Product) string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
