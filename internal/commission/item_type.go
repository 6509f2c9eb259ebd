package commission

import (
	"fmt"

	"commission-api/internal/models"
)

// EventKind is what happened to the item a commission is paid on.
type EventKind int

const (
	EventPurchase EventKind = iota + 1
	EventConsumption
)

func (k EventKind) String() string {
	switch k {
	case EventPurchase:
		return "purchase"
	case EventConsumption:
		return "consumption"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// EntityFamily is the kind of thing that was sold or consumed.
type EntityFamily int

const (
	FamilyCarePackage EntityFamily = iota + 1
	FamilyVoucher
	FamilyService
	FamilyProduct
)

func (f EntityFamily) String() string {
	switch f {
	case FamilyCarePackage:
		return "member_care_package"
	case FamilyVoucher:
		return "member_voucher"
	case FamilyService:
		return "service"
	case FamilyProduct:
		return "product"
	default:
		return fmt.Sprintf("EntityFamily(%d)", int(f))
	}
}

type attribution struct {
	kind   EventKind
	family EntityFamily
}

// Services and products are only ever attributed on sale.
var itemTypes = map[attribution]models.ItemType{
	{EventPurchase, FamilyCarePackage}:    models.ItemTypeMemberCarePackages,
	{EventConsumption, FamilyCarePackage}: models.ItemTypeMemberCarePackageTransactionLogs,
	{EventPurchase, FamilyVoucher}:        models.ItemTypeMemberVouchers,
	{EventConsumption, FamilyVoucher}:     models.ItemTypeMemberVoucherTransactionLogs,
	{EventPurchase, FamilyService}:        models.ItemTypeServices,
	{EventPurchase, FamilyProduct}:        models.ItemTypeProducts,
}

// ItemTypeFor returns the ledger item type for a commission on family after kind.
func ItemTypeFor(kind EventKind, family EntityFamily) (models.ItemType, error) {
	itemType, ok := itemTypes[attribution{kind, family}]
	if !ok {
		return "", fmt.Errorf("no commission item type for %s of %s", kind, family)
	}
	return itemType, nil
}

// saleFamily maps a sale line type to its family.
func saleFamily(lineType string) (EntityFamily, bool) {
	switch lineType {
	case "service":
		return FamilyService, true
	case "product":
		return FamilyProduct, true
	default:
		return 0, false
	}
}
