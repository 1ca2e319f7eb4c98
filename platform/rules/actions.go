package rules

import (
	"github.com/DedS3t/monopoly-engine/app/models"
	"github.com/DedS3t/monopoly-engine/platform/board"
)

type ActionKind string

const (
	ActRoll              ActionKind = "roll"
	ActBuy               ActionKind = "buy"
	ActDecline           ActionKind = "decline"
	ActBuild             ActionKind = "build"
	ActSellHouse         ActionKind = "sell-house"
	ActMortgage          ActionKind = "mortgage"
	ActUnmortgage        ActionKind = "unmortgage"
	ActEndTurn           ActionKind = "end-turn"
	ActPayJailBail       ActionKind = "pay-jail-bail"
	ActUseJailCard       ActionKind = "use-jail-card"
	ActDeclareBankruptcy ActionKind = "declare-bankruptcy"
)

// Action is a closed set: only the types in this file implement it.
type Action interface {
	Kind() ActionKind
	isAction()
}

type (
	Roll               struct{}
	Purchase           struct{}
	Decline            struct{}
	BuildHouse         struct{ Space int }
	SellBuilding       struct{ Space int }
	MortgageProperty   struct{ Space int }
	UnmortgageProperty struct{ Space int }
	EndTurn            struct{}
	PayJailBail        struct{}
	UseJailCard        struct{}
	DeclareBankruptcy  struct{}
)

func (Roll) Kind() ActionKind               { return ActRoll }
func (Purchase) Kind() ActionKind           { return ActBuy }
func (Decline) Kind() ActionKind            { return ActDecline }
func (BuildHouse) Kind() ActionKind         { return ActBuild }
func (SellBuilding) Kind() ActionKind       { return ActSellHouse }
func (MortgageProperty) Kind() ActionKind   { return ActMortgage }
func (UnmortgageProperty) Kind() ActionKind { return ActUnmortgage }
func (EndTurn) Kind() ActionKind            { return ActEndTurn }
func (PayJailBail) Kind() ActionKind        { return ActPayJailBail }
func (UseJailCard) Kind() ActionKind        { return ActUseJailCard }
func (DeclareBankruptcy) Kind() ActionKind  { return ActDeclareBankruptcy }

func (Roll) isAction()               {}
func (Purchase) isAction()           {}
func (Decline) isAction()            {}
func (BuildHouse) isAction()         {}
func (SellBuilding) isAction()       {}
func (MortgageProperty) isAction()   {}
func (UnmortgageProperty) isAction() {}
func (EndTurn) isAction()            {}
func (PayJailBail) isAction()        {}
func (UseJailCard) isAction()        {}
func (DeclareBankruptcy) isAction()  {}

// DecodeAction turns a wire payload into an Action, rejecting unknown kinds and bad space ids.
func DecodeAction(dto models.ActionDto) (Action, error) {
	needsSpace := func() error {
		if dto.Space < 0 || dto.Space >= board.Size {
			return invalid("space %d is not on the board", dto.Space)
		}
		return nil
	}

	switch ActionKind(dto.Type) {
	case ActRoll:
		return Roll{}, nil
	case ActBuy:
		return Purchase{}, nil
	case ActDecline:
		return Decline{}, nil
	case ActEndTurn:
		return EndTurn{}, nil
	case ActPayJailBail:
		return PayJailBail{}, nil
	case ActUseJailCard:
		return UseJailCard{}, nil
	case ActDeclareBankruptcy:
		return DeclareBankruptcy{}, nil
	case ActBuild:
		if err := needsSpace(); err != nil {
			return nil, err
		}
		return BuildHouse{Space: dto.Space}, nil
	case ActSellHouse:
		if err := needsSpace(); err != nil {
			return nil, err
		}
		return SellBuilding{Space: dto.Space}, nil
	case ActMortgage:
		if err := needsSpace(); err != nil {
			return nil, err
		}
		return MortgageProperty{Space: dto.Space}, nil
	case ActUnmortgage:
		if err := needsSpace(); err != nil {
			return nil, err
		}
		return UnmortgageProperty{Space: dto.Space}, nil
	}
	return nil, invalid("unknown action %q", dto.Type)
}

// EncodeAction is the inverse of DecodeAction.
func EncodeAction(a Action) models.ActionDto {
	dto := models.ActionDto{Type: string(a.Kind())}
	switch v := a.(type) {
	case BuildHouse:
		dto.Space = v.Space
	case SellBuilding:
		dto.Space = v.Space
	case MortgageProperty:
		dto.Space = v.Space
	case UnmortgageProperty:
		dto.Space = v.Space
	}
	return dto
}
