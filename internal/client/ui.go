package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

const helpText = `Commands:
  add <name> <quantity>      add a new item
  remove <name>              remove an item
  update <name> <quantity>   set the quantity of an item
  purchase <name>            take one unit of an item
  return <name>              put one unit of an item back
  refresh                    reload the inventory
  help                       show this help
  quit                       exit`

// App is the terminal front end. All of its state is owned by the goroutine
// running Run; workers only ever reach it through dispatcher outcomes.
type App struct {
	dispatcher *Dispatcher
	out        io.Writer

	items []InventoryItem
	busy  int
}

func NewApp(dispatcher *Dispatcher, out io.Writer) *App {
	return &App{dispatcher: dispatcher, out: out}
}

// Items returns the last inventory fetched from the service.
func (a *App) Items() []InventoryItem {
	return a.items
}

// Busy is the number of requests still in flight.
func (a *App) Busy() int {
	return a.busy
}

// Run reads commands from in until quit, end of input or ctx is done. On
// end of input it waits for in-flight requests before returning.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	a.Refresh()
	a.prompt()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return a.Settle(ctx)
			}
			if !a.Handle(line) {
				return nil
			}
			a.prompt()
		case outcome, ok := <-a.dispatcher.Results():
			if !ok {
				return nil
			}
			a.deliver(outcome)
		}
	}
}

// Settle delivers outcomes until no request is in flight.
func (a *App) Settle(ctx context.Context) error {
	for a.busy > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case outcome, ok := <-a.dispatcher.Results():
			if !ok {
				return nil
			}
			a.deliver(outcome)
		}
	}
	return nil
}

// Handle executes one command line. It returns false when the user asked
// to quit.
func (a *App) Handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "add":
		name, quantity, ok := a.nameAndQuantity(args, "Both name and quantity are required.")
		if ok {
			a.mutate("add-item", map[string]any{"name": name, "quantity": quantity})
		}
	case "update":
		name, quantity, ok := a.nameAndQuantity(args, "Both name and new quantity are required.")
		if ok {
			a.mutate("update-quantity", map[string]any{"name": name, "new_quantity": quantity})
		}
	case "remove", "purchase", "return":
		name := strings.Join(args, " ")
		if name == "" {
			a.showError("Item name is required.")
			return true
		}
		endpoint := map[string]string{
			"remove":   "remove-item",
			"purchase": "purchase-item",
			"return":   "return-item",
		}[command]
		a.mutate(endpoint, map[string]any{"name": name})
	case "refresh", "list":
		a.Refresh()
	case "help", "?":
		fmt.Fprintln(a.out, helpText)
	case "quit", "exit":
		return false
	default:
		a.showError(fmt.Sprintf("Unknown command %q, type help for a list.", command))
	}
	return true
}

// Refresh fetches the inventory in the background.
func (a *App) Refresh() {
	a.submit(Task{
		Endpoint:  "get-inventory",
		OnSuccess: a.updateInventory,
	})
}

func (a *App) nameAndQuantity(args []string, missing string) (string, int, bool) {
	if len(args) < 2 {
		a.showError(missing)
		return "", 0, false
	}
	quantity, err := strconv.Atoi(args[len(args)-1])
	if err != nil {
		a.showError("Quantity must be a valid integer.")
		return "", 0, false
	}
	return strings.Join(args[:len(args)-1], " "), quantity, true
}

// mutate sends a change and reloads the inventory once it succeeds.
func (a *App) mutate(endpoint string, body map[string]any) {
	a.submit(Task{
		Endpoint: endpoint,
		Body:     body,
		OnSuccess: func(p Payload) {
			if msg := p.Message(); msg != "" {
				fmt.Fprintln(a.out, msg)
			}
			a.Refresh()
		},
	})
}

func (a *App) submit(task Task) {
	if task.OnError == nil {
		task.OnError = func(err error) { a.showError(err.Error()) }
	}
	if _, err := a.dispatcher.Submit(task); err != nil {
		a.showError(err.Error())
		return
	}
	a.busy++
}

func (a *App) deliver(outcome Outcome) {
	a.busy--
	outcome.Deliver()
}

func (a *App) updateInventory(p Payload) {
	var body InventoryPayload
	if err := p.Decode(&body); err != nil {
		a.showError("Unexpected inventory response: " + err.Error())
		return
	}

	sort.Slice(body.Inventory, func(i, j int) bool {
		return body.Inventory[i].Name < body.Inventory[j].Name
	})
	a.items = body.Inventory
	a.render()
}

func (a *App) render() {
	fmt.Fprintln(a.out, "Inventory:")
	if len(a.items) == 0 {
		fmt.Fprintln(a.out, "  No items in inventory.")
		return
	}
	for _, item := range a.items {
		fmt.Fprintf(a.out, "  %s - %d\n", item.Name, item.Quantity)
	}
}

func (a *App) showError(msg string) {
	fmt.Fprintln(a.out, "Error:", msg)
}

func (a *App) prompt() {
	if a.busy > 0 {
		fmt.Fprintf(a.out, "[%d pending] > ", a.busy)
		return
	}
	fmt.Fprint(a.out, "> ")
}
