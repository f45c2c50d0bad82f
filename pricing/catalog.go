package pricing

import (
	"github.com/shopspring/decimal"
)

// Add-on ids with special pricing
const (
	AddOnEco                    = "eco"
	AddOnPostRenovationCleaning = "post_renovation_cleaning"
)

// PostRenovationSurchargeRate is 30% of the base price
var PostRenovationSurchargeRate = decimal.New(30, -2)

func residentialBrackets(prices ...int64) []Bracket {
	limits := []int{30, 40, 50, 60, 70, 80, 90, 100, 120}
	out := make([]Bracket, 0, len(prices))
	for i, p := range prices {
		out = append(out, Bracket{MaxArea: limits[i], Price: p})
	}
	return out
}

// DefaultServices is the published price list
func DefaultServices() []ServiceDefinition {
	upholsteryFlat := int64(200)
	return []ServiceDefinition{
		{
			Type:     ServiceResidentialWeekly,
			Name:     "Sprzątanie mieszkań - co tydzień",
			Brackets: residentialBrackets(219, 229, 239, 249, 269, 299, 329, 379, 459),
		},
		{
			Type:     ServiceResidentialBiweekly,
			Name:     "Sprzątanie mieszkań - co 2 tygodnie",
			Brackets: residentialBrackets(229, 239, 249, 259, 279, 309, 349, 389, 479),
		},
		{
			Type:     ServiceResidentialOnetime,
			Name:     "Sprzątanie mieszkań - jednorazowe",
			Brackets: residentialBrackets(249, 259, 269, 289, 299, 379, 399, 429, 499),
		},
		{
			Type:     ServiceOffice,
			Name:     "Sprzątanie biur",
			Brackets: []Bracket{{MaxArea: 50, Price: 199}, {MaxArea: 100, Price: 249}},
		},
		{
			Type:           ServicePostRenovation,
			Name:           "Sprzątanie po remoncie",
			IndividualOnly: true,
		},
		{
			Type:      ServiceUpholstery,
			Name:      "Czyszczenie tapicerki",
			FlatPrice: &upholsteryFlat,
		},
	}
}

func std(id, name string, price int64) AddOnDefinition {
	return AddOnDefinition{ID: id, Name: name, UnitPrice: price, Kind: AddOnStandard}
}

// DefaultAddOns is the published add-on catalog
func DefaultAddOns() []AddOnDefinition {
	return []AddOnDefinition{
		// windows
		std("windows_1", "Okno 1-skrzydłowe", 39),
		std("windows_2", "Okno 2-skrzydłowe standardowe", 69),
		std("balcony_door_1", "Drzwi balkonowe (1 skrzydło)", 49),
		std("balcony_door_2", "Drzwi balkonowe (2 skrzydła)", 79),
		std("roof_window", "Okno dachowe", 55),
		std("glass_balustrade", "Balustrada szklana", 25),
		// kitchen and household
		std("fridge", "Mycie lodówki", 75),
		std("microwave", "Mycie mikrofalówki", 39),
		std("oven", "Czyszczenie piekarnika", 75),
		std("dishwasher", "Mycie zmywarki", 55),
		std("hood", "Mycie okapu", 49),
		std("coffee_machine", "Mycie ekspresu", 35),
		std("kitchen_cabinets", "Sprzątanie szafek kuchennych", 15),
		std("radiator", "Czyszczenie kaloryferów", 35),
		std("grout_cleaning", "Czyszczenie fug", 19),
		// keys
		std("key_pickup", "Odbiór kluczy", 35),
		std("key_delivery", "Dostarczenie kluczy", 35),
		// upholstery
		std("sofa_2_3", "Kanapa 2-3 os.", 215),
		std("corner_l", "Narożnik L", 310),
		std("corner_u", "Narożnik U", 410),
		std("armchair", "Fotel", 80),
		std("chair_backrest", "Krzesło z oparciem", 25),
		std("ottoman", "Pufa", 30),
		std("pillow", "Poduszka", 15),
		// special
		{ID: AddOnEco, Name: "Sprzątanie ekologiczne", Kind: AddOnFree},
		{
			ID:   AddOnPostRenovationCleaning,
			Name: "Doczyszczanie po remoncie (+30%)",
			Kind: AddOnSurcharge,
			Rate: PostRenovationSurchargeRate,
		},
	}
}

// DefaultTable builds the production table. Unknown service types are
// priced with the one-time residential brackets.
func DefaultTable() *Table {
	t, err := NewTable(DefaultServices(), DefaultAddOns(), ServiceResidentialOnetime)
	if err != nil {
		panic(err)
	}
	return t
}
