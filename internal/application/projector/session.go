package projector

import (
	"strings"

	"github.com/cmdrlink/edcore/internal/domain/journal"
	"github.com/cmdrlink/edcore/internal/domain/state"
)

func (p *Projector) registerSessionHandlers() {
	p.on("MarketSell", p.handleMarketSell)
	p.on("MarketBuy", p.handleMarketBuy)
	p.on("RedeemVoucher", p.handleRedeemVoucher)
	p.on("Bounty", p.handleBounty)
	p.on("SellExplorationData", p.handleSellExplorationData)
	p.on("MultiSellExplorationData", p.handleSellExplorationData)
	p.on("Scan", p.countHandler(func(s *state.Session) { s.BodiesScanned++ }))
	p.on("SAAScanComplete", p.countHandler(func(s *state.Session) { s.BodiesScanned++ }))
	p.on("MiningRefined", p.countHandler(func(s *state.Session) { s.MiningRefined++ }))
	p.on("Died", p.countHandler(func(s *state.Session) { s.Deaths++ }))

	// Straight credit sinks and sources.
	p.on("Resurrect", p.spendHandler("Cost"))
	p.on("PayFines", p.spendHandler("Amount"))
	p.on("NpcCrewPaidWage", p.spendHandler("Amount"))
	p.on("CrewHire", p.spendHandler("Cost"))
	p.on("BuyTradeData", p.spendHandler("Cost"))
	p.on("BuyAmmo", p.spendHandler("Cost"))
	p.on("BuyDrones", p.spendHandler("TotalCost"))
	p.on("SellDrones", p.earnHandler("TotalSale"))
	p.on("SearchAndRescue", p.earnHandler("Reward"))
	p.on("PowerplaySalary", p.earnHandler("Amount"))
}

func (p *Projector) countHandler(mutate func(*state.Session)) handlerFunc {
	return func(*journal.Event) []state.SliceName {
		mutate(&p.state.Session)
		return []state.SliceName{state.SliceSession}
	}
}

func (p *Projector) spendHandler(field string) handlerFunc {
	return func(ev *journal.Event) []state.SliceName {
		p.state.Session.Spend(ev.Int(field))
		return []state.SliceName{state.SliceSession}
	}
}

func (p *Projector) earnHandler(field string) handlerFunc {
	return func(ev *journal.Event) []state.SliceName {
		p.state.Session.Earn(ev.Int(field))
		return []state.SliceName{state.SliceSession}
	}
}

// handleMarketSell books the sale and its margin over the average price
// paid, plus the traded tonnage.
func (p *Projector) handleMarketSell(ev *journal.Event) []state.SliceName {
	session := &p.state.Session
	totalSale := ev.Int("TotalSale")
	count := ev.Int("Count")
	session.Earn(totalSale)
	session.TradeProfit += totalSale - ev.Int("AvgPricePaid")*count
	session.CargoTraded += int(count)
	return []state.SliceName{state.SliceSession}
}

func (p *Projector) handleMarketBuy(ev *journal.Event) []state.SliceName {
	p.state.Session.Spend(ev.Int("TotalCost"))
	return []state.SliceName{state.SliceSession}
}

// handleRedeemVoucher counts bounty and combat-bond vouchers toward
// bounty earnings; every voucher type counts toward credits earned.
func (p *Projector) handleRedeemVoucher(ev *journal.Event) []state.SliceName {
	session := &p.state.Session
	amount := ev.Int("Amount")
	session.Earn(amount)

	voucherType := strings.ToLower(ev.Str("Type"))
	if voucherType == "bounty" || voucherType == "combatbond" {
		session.BountyEarnings += amount
	}
	return []state.SliceName{state.SliceSession}
}

func (p *Projector) handleBounty(ev *journal.Event) []state.SliceName {
	session := &p.state.Session
	session.BountiesCollected++
	session.BountyEarnings += ev.Int("TotalReward")
	return []state.SliceName{state.SliceSession}
}

func (p *Projector) handleSellExplorationData(ev *journal.Event) []state.SliceName {
	session := &p.state.Session
	earnings := ev.Int("TotalEarnings")
	session.Earn(earnings)
	session.ExplorationEarnings += earnings
	return []state.SliceName{state.SliceSession}
}
