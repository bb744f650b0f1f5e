package booking

import (
	"context"
	"testing"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/middleware"
	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
	"innkeep/internal/infra/storage/memory"
)

type recordingFactory struct {
	inner memory.Factory
	seen  []uow.TxOptions
}

func (f *recordingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	f.seen = append(f.seen, opts)
	return f.inner.Begin(ctx, opts)
}

func TestTransactionOptions_AvailabilityWritesAreSerializable(t *testing.T) {
	cases := []struct {
		cmd  commands.Command
		want bool
	}{
		{AssignRoomsCommand{}, true},
		{DirectBookingCommand{}, true},
		{EditDatesCommand{}, true},
		{CancelBookingCommand{}, false},
		{CheckInCommand{}, false},
	}
	for _, tc := range cases {
		if got := TransactionOptions(tc.cmd).Serializable; got != tc.want {
			t.Fatalf("%s: serializable = %v, want %v", tc.cmd.Key(), got, tc.want)
		}
	}
}

// The transaction middleware opens the unit of work before the handler
// runs, so the isolation the assignment path needs must come from the
// options provider, not from the handler itself.
func TestTransactionMiddleware_AssignmentRunsSerializable(t *testing.T) {
	rec := &recordingFactory{inner: memory.NewFactory()}
	seedRooms(t, rec.inner, room101())
	seedPendingBooking(t, rec.inner, "bk-1", 1, decemberStay(t, 20, 23))

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, AssignRoomsCommand{}.Key(), &AssignRoomsHandler{UoWFactory: rec})
	chained := middleware.ChainCommands(bus, middleware.Transaction(rec, TransactionOptions))

	res, err := commands.Dispatch[AssignRoomsCommand, *AssignRoomsResult](context.Background(), chained, AssignRoomsCommand{
		BookingID: "bk-1",
		RoomIDs:   []string{"room-101"},
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if res.Status != string(domainbooking.StatusConfirmed) {
		t.Fatalf("expected CONFIRMED, got %s", res.Status)
	}
	if len(rec.seen) != 1 {
		t.Fatalf("expected one unit of work, factory saw %d", len(rec.seen))
	}
	if !rec.seen[0].Serializable {
		t.Fatalf("assignment ran without serializable isolation: factory saw %+v", rec.seen[0])
	}
}
