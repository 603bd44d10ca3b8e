package state

// SpaceUsage is the fleet carrier capacity breakdown.
type SpaceUsage struct {
	TotalCapacity      int `json:"totalCapacity"`
	Crew               int `json:"crew"`
	Cargo              int `json:"cargo"`
	CargoSpaceReserved int `json:"cargoSpaceReserved"`
	ShipPacks          int `json:"shipPacks"`
	ModulePacks        int `json:"modulePacks"`
	FreeSpace          int `json:"freeSpace"`
}

// CarrierFinance is the carrier bank plus the six service tax rates.
type CarrierFinance struct {
	CarrierBalance   int64   `json:"carrierBalance"`
	ReserveBalance   int64   `json:"reserveBalance"`
	AvailableBalance int64   `json:"availableBalance"`
	ReservePercent   float64 `json:"reservePercent"`

	TaxRatePioneersupplies float64 `json:"taxRatePioneersupplies"`
	TaxRateShipyard        float64 `json:"taxRateShipyard"`
	TaxRateRearm           float64 `json:"taxRateRearm"`
	TaxRateOutfitting      float64 `json:"taxRateOutfitting"`
	TaxRateRefuel          float64 `json:"taxRateRefuel"`
	TaxRateRepair          float64 `json:"taxRateRepair"`
}

// CrewService is one crewed service aboard the carrier.
type CrewService struct {
	Role      string `json:"role"`
	Activated bool   `json:"activated"`
	Enabled   bool   `json:"enabled"`
	CrewName  string `json:"crewName,omitempty"`
}

// CarrierPack is a purchased ship or module pack, keyed by (theme, tier).
type CarrierPack struct {
	Theme string `json:"theme"`
	Tier  int    `json:"tier"`
}

// TradeOrder is a carrier buy/sell order, keyed by (commodity, blackMarket).
type TradeOrder struct {
	Commodity     string `json:"commodity"`
	BlackMarket   bool   `json:"blackMarket"`
	PurchaseOrder int    `json:"purchaseOrder,omitempty"`
	SaleOrder     int    `json:"saleOrder,omitempty"`
	Price         int64  `json:"price"`
}

// Carrier is the fleet carrier slice. It stays nil on the root document
// until the first CarrierStats event lands.
type Carrier struct {
	ID       int64  `json:"id"`
	Callsign string `json:"callsign"`
	Name     string `json:"name"`

	DockingAccess       string  `json:"dockingAccess"`
	AllowNotorious      bool    `json:"allowNotorious"`
	FuelLevel           int     `json:"fuelLevel"`
	JumpRangeCurr       float64 `json:"jumpRangeCurr"`
	JumpRangeMax        float64 `json:"jumpRangeMax"`
	PendingDecommission bool    `json:"pendingDecommission"`

	SpaceUsage SpaceUsage     `json:"spaceUsage"`
	Finance    CarrierFinance `json:"finance"`

	Services    []CrewService `json:"services"`
	ShipPacks   []CarrierPack `json:"shipPacks"`
	ModulePacks []CarrierPack `json:"modulePacks"`
	TradeOrders []TradeOrder  `json:"tradeOrders"`

	CurrentSystem string   `json:"currentSystem"`
	CurrentBody   string   `json:"currentBody"`
	JumpHistory   []string `json:"jumpHistory"`
}

// FindService returns the index of the named service role, or -1.
func (c *Carrier) FindService(role string) int {
	for i := range c.Services {
		if c.Services[i].Role == role {
			return i
		}
	}
	return -1
}

// FindTradeOrder returns the index of the order for (commodity,
// blackMarket), or -1.
func (c *Carrier) FindTradeOrder(commodity string, blackMarket bool) int {
	for i := range c.TradeOrders {
		if c.TradeOrders[i].Commodity == commodity && c.TradeOrders[i].BlackMarket == blackMarket {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the carrier slice.
func (c Carrier) Clone() Carrier {
	clone := c
	clone.Services = append([]CrewService(nil), c.Services...)
	clone.ShipPacks = append([]CarrierPack(nil), c.ShipPacks...)
	clone.ModulePacks = append([]CarrierPack(nil), c.ModulePacks...)
	clone.TradeOrders = append([]TradeOrder(nil), c.TradeOrders...)
	clone.JumpHistory = append([]string(nil), c.JumpHistory...)
	return clone
}
