// Package console provides the interactive text shell over the inventory service.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/abgdnv/stockroom/internal/inventory"
	"github.com/abgdnv/stockroom/internal/inventory/service"
)

const (
	msgEmpty        = "Oops! Inventory is empty!"
	msgAdded        = "Item added successfully!"
	msgUpdated      = "Item updated successfully!"
	msgRemoved      = "Item removed successfully!"
	msgNotFound     = "Sorry: Item not found!"
	msgInvalidInput = "Invalid input! Please enter numeric values for quantity and price."
	msgInvalidMenu  = "Invalid choice! Please try again."
	msgExit         = "Exiting The System......"
	msgDataSaved    = " Data saved!"
)

var (
	tableHeader = " ID\t\t  | NAME\t\t | QUANTITY\t\t   | PRICE\n" + strings.Repeat("-", 146) + "\n"
	reportRule  = strings.Repeat("-", 39) + "\n"
)

// command is one entry of the main menu.
type command struct {
	label string
	run   func(s *Shell, ctx context.Context) error
}

var menu = []command{
	{label: "View Inventory", run: (*Shell).viewInventory},
	{label: "Add New Item", run: (*Shell).addItem},
	{label: "Update Item", run: (*Shell).updateItem},
	{label: "Remove Item", run: (*Shell).removeItem},
	{label: "Search for Item", run: (*Shell).searchItem},
	{label: "View Reports", run: (*Shell).viewReports},
	{label: "Exit", run: nil},
}

// errInputClosed signals that stdin ended while a prompt was waiting.
var errInputClosed = errors.New("input closed")

// Shell reads menu choices and field values line by line and writes plain text results.
type Shell struct {
	service service.InventoryService
	in      io.Reader
	out     io.Writer
	logger  *slog.Logger
	lines   chan string
	done    chan struct{}
}

// NewShell creates a shell reading from in and writing to out.
func NewShell(svc service.InventoryService, in io.Reader, out io.Writer, logger *slog.Logger) *Shell {
	return &Shell{
		service: svc,
		in:      in,
		out:     out,
		logger:  logger.With("component", "console"),
	}
}

// Run serves menu commands until Exit is chosen, the input ends or ctx is cancelled.
// Every way out performs the final save.
func (s *Shell) Run(ctx context.Context) error {
	s.lines = make(chan string)
	s.done = make(chan struct{})
	defer close(s.done)
	go s.scan()

	for {
		s.printMenu()
		choice, err := s.readLine(ctx)
		if err != nil {
			return s.exit(ctx)
		}
		cmd, ok := lookup(choice)
		if !ok {
			s.println(msgInvalidMenu)
			continue
		}
		if cmd.run == nil {
			return s.exit(ctx)
		}
		s.logger.DebugContext(ctx, "Running command", "command", cmd.label)
		if err := cmd.run(s, ctx); err != nil {
			return s.exit(ctx)
		}
	}
}

// scan feeds input lines to Run. Lines have no length limit.
func (s *Shell) scan() {
	defer close(s.lines)
	reader := bufio.NewReader(s.in)
	for {
		line, err := reader.ReadString('\n')
		if line != "" || err == nil {
			select {
			case s.lines <- strings.TrimRight(line, "\r\n"):
			case <-s.done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Warn("Input read failed", "error", err)
			}
			return
		}
	}
}

func (s *Shell) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return "", errInputClosed
		}
		return strings.TrimSpace(line), nil
	}
}

func (s *Shell) prompt(ctx context.Context, label string) (string, error) {
	fmt.Fprintf(s.out, "%s ", label)
	return s.readLine(ctx)
}

func lookup(choice string) (command, bool) {
	for i, cmd := range menu {
		if choice == fmt.Sprint(i+1) || strings.EqualFold(choice, cmd.label) {
			return cmd, true
		}
	}
	return command{}, false
}

func (s *Shell) printMenu() {
	s.println("\nINVENTORY MANAGEMENT SYSTEM")
	for i, cmd := range menu {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, cmd.label)
	}
	fmt.Fprint(s.out, "Choose an option: ")
}

func (s *Shell) println(msg string) {
	fmt.Fprintln(s.out, msg)
}

func (s *Shell) display(items []inventory.Item) {
	for _, item := range items {
		if err := item.Display(s.out); err != nil {
			s.logger.Warn("Failed to write item", "ID", item.ID, "error", err)
			return
		}
	}
}

// saveFailed reports a persistence error; the change already made in memory is kept.
func (s *Shell) saveFailed(err error) {
	s.println("Error saving inventory: " + err.Error())
}

func (s *Shell) viewInventory(ctx context.Context) error {
	items := s.service.ListItems(ctx)
	if len(items) == 0 {
		s.println(msgEmpty)
		return nil
	}
	fmt.Fprint(s.out, tableHeader)
	s.display(items)
	return nil
}

func (s *Shell) addItem(ctx context.Context) error {
	id, err := s.prompt(ctx, "Enter Item ID:")
	if err != nil {
		return err
	}
	name, err := s.prompt(ctx, "Enter Item Name:")
	if err != nil {
		return err
	}
	rawQuantity, err := s.prompt(ctx, "Enter Quantity In Kilograms(KG):")
	if err != nil {
		return err
	}
	quantity, err := service.ParseQuantity(rawQuantity)
	if err != nil {
		s.logger.DebugContext(ctx, "Rejected add", "error", err)
		s.println(msgInvalidInput)
		return nil
	}
	rawPrice, err := s.prompt(ctx, "Enter Price Per Item In Kwacha(MWK):")
	if err != nil {
		return err
	}
	price, err := service.ParsePrice(rawPrice)
	if err != nil {
		s.logger.DebugContext(ctx, "Rejected add", "error", err)
		s.println(msgInvalidInput)
		return nil
	}

	if _, err := s.service.AddItem(ctx, id, name, quantity, price); err != nil {
		s.saveFailed(err)
	}
	s.println(msgAdded)
	return nil
}

func (s *Shell) updateItem(ctx context.Context) error {
	id, err := s.prompt(ctx, "Enter Item ID to update:")
	if err != nil {
		return err
	}
	if !s.service.HasItem(ctx, id) {
		s.println(msgNotFound)
		return nil
	}
	rawQuantity, err := s.prompt(ctx, "Enter new quantity:")
	if err != nil {
		return err
	}
	quantity, err := service.ParseQuantity(rawQuantity)
	if err != nil {
		s.logger.DebugContext(ctx, "Rejected update", "ID", id, "error", err)
		s.println(msgInvalidInput)
		return nil
	}
	rawPrice, err := s.prompt(ctx, "Enter new price:")
	if err != nil {
		return err
	}
	price, err := service.ParsePrice(rawPrice)
	if err != nil {
		s.logger.DebugContext(ctx, "Rejected update", "ID", id, "error", err)
		s.println(msgInvalidInput)
		return nil
	}

	found, err := s.service.UpdateItem(ctx, id, quantity, price)
	if !found {
		s.println(msgNotFound)
		return nil
	}
	if err != nil {
		s.saveFailed(err)
	}
	s.println(msgUpdated)
	return nil
}

func (s *Shell) removeItem(ctx context.Context) error {
	id, err := s.prompt(ctx, "Enter Item ID to remove:")
	if err != nil {
		return err
	}
	removed, err := s.service.RemoveItem(ctx, id)
	if removed == 0 {
		s.println(msgNotFound)
		return nil
	}
	if err != nil {
		s.saveFailed(err)
	}
	s.println(msgRemoved)
	return nil
}

func (s *Shell) searchItem(ctx context.Context) error {
	query, err := s.prompt(ctx, "Enter Item Name or ID:")
	if err != nil {
		return err
	}
	item, found := s.service.FindItem(ctx, query)
	if !found {
		s.println(msgNotFound)
		return nil
	}
	s.println("\nItem Found!!")
	s.display([]inventory.Item{item})
	return nil
}

func (s *Shell) viewReports(ctx context.Context) error {
	threshold := s.service.DefaultThreshold()
	fmt.Fprintf(s.out, "\nLOW STOCK ITEMS (Quantity < %d):\n", threshold)
	fmt.Fprint(s.out, reportRule)
	fmt.Fprint(s.out, "  ID    |   NAME          |   QUANTITY  |   PRICE\n")
	fmt.Fprint(s.out, reportRule)
	s.display(s.service.LowStockReport(ctx, threshold))
	return nil
}

// exit performs the final save. It uses a fresh context so a cancelled ctx does not abort the save.
func (s *Shell) exit(ctx context.Context) error {
	if err := s.service.Shutdown(context.WithoutCancel(ctx)); err != nil {
		s.saveFailed(err)
		s.println(msgExit)
		return err
	}
	s.println(msgExit + msgDataSaved)
	return nil
}
