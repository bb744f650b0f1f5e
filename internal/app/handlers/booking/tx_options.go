package booking

import (
	"innkeep/internal/app/commands"
	"innkeep/internal/app/uow"
)

// TransactionOptions maps commands to the transaction options their write
// path needs. The bus middleware opens the shared unit of work before the
// handler runs, so the availability paths (check-then-write over the
// assignment ledger) must declare serializable isolation here; options a
// handler passes to BeginWriteUnit only take effect when it runs outside a
// middleware-managed unit.
func TransactionOptions(cmd commands.Command) uow.TxOptions {
	switch cmd.(type) {
	case AssignRoomsCommand, DirectBookingCommand, EditDatesCommand:
		return uow.TxOptions{Serializable: true}
	}
	return uow.TxOptions{}
}
