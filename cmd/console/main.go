package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"linguacall/config"
	"linguacall/internal/agent"
	"linguacall/internal/api"
	"linguacall/internal/auth"
	"linguacall/internal/av"
	bookingsched "linguacall/internal/booking"
	domainbooking "linguacall/internal/domain/booking"
	"linguacall/internal/push"
	"linguacall/internal/session"
	"linguacall/pkg/logger"

	linguacall_errors "linguacall/pkg/errors"
)

func main() {
	cfg := config.LoadConfig()
	lg := logger.New(cfg.LogMode)
	defer lg.Sync()

	tokens := auth.NewTokenStore(cfg.TokenPath)
	client := api.NewClient(cfg.APIBaseURL, tokens, lg)
	client.OnLogout(func() {
		fmt.Println("session expired, please log in again")
	})

	ctx := context.Background()

	email := os.Getenv("LINGUACALL_EMAIL")
	password := os.Getenv("LINGUACALL_PASSWORD")
	if tokens.Token() == "" || auth.TokenExpired(tokens.Token(), time.Now()) {
		if email == "" || password == "" {
			fmt.Println("set LINGUACALL_EMAIL and LINGUACALL_PASSWORD to log in")
			os.Exit(1)
		}
		if _, err := client.Login(ctx, email, password); err != nil {
			fmt.Printf("login failed: %v\n", err)
			os.Exit(1)
		}
	}

	me, err := client.CurrentUser(ctx)
	if err != nil {
		fmt.Printf("profile fetch failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("logged in as %s (%s)\n", me.Name, me.Role)

	store := session.NewStore(lg)
	pushClient := push.NewClient(cfg.WebsocketURL, cfg.ReconnectMinDelay, cfg.ReconnectMaxDelay, lg)
	controller := agent.NewController(client, store, pushClient, av.NopEngine{}, me.Name, lg)
	scheduler := bookingsched.NewScheduler(client, lg)

	if err := controller.Start(ctx, tokens.Token()); err != nil {
		fmt.Printf("dashboard start failed: %v\n", err)
		os.Exit(1)
	}
	defer controller.Stop()

	fmt.Println("commands: status | start | end | translators [lang] | calendar | book <translator-id> <RFC3339 start> <30|60> <lang> | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			return
		case "status":
			printStatus(store, controller)
		case "start":
			if _, err := controller.StartCall(ctx, &api.CustomerInfo{CustomerName: "Walk-in Customer"}); err != nil {
				fmt.Printf("start failed: %v\n", err)
			}
		case "end":
			if err := controller.EndCall(ctx); err != nil {
				fmt.Printf("end failed: %v\n", err)
			}
		case "translators":
			lang := ""
			if len(fields) > 1 {
				lang = fields[1]
			}
			listTranslators(ctx, scheduler, lang)
		case "calendar":
			printCalendar(ctx, scheduler)
		case "book":
			createBooking(ctx, scheduler, fields[1:])
		default:
			fmt.Println("unknown command")
		}
	}
}

func printStatus(store *session.Store, controller *agent.Controller) {
	fmt.Printf("push: %s\n", controller.PushState())
	if m := store.Metrics(); m != nil {
		fmt.Printf("calls total=%d active=%d waiting=%d avg-duration=%.0fs\n",
			m.TotalCalls, m.ActiveCalls, m.WaitingCalls, m.AverageCallDuration)
	}
	for _, c := range store.ActiveCalls() {
		marker := " "
		if current := store.CurrentCall(); current != nil && current.ID == c.ID {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  %s\n", marker, c.ID, c.Status, c.RoomName)
	}
}

func listTranslators(ctx context.Context, scheduler *bookingsched.Scheduler, lang string) {
	translators, err := scheduler.ListAvailableTranslators(ctx, lang)
	if err != nil {
		fmt.Printf("list failed: %v\n", err)
		return
	}
	for _, t := range translators {
		fmt.Printf("%s  %s  %s\n", t.ID, t.Name, strings.Join(t.Languages, ","))
	}
}

func printCalendar(ctx context.Context, scheduler *bookingsched.Scheduler) {
	now := time.Now()
	events, err := scheduler.ListBookingsForCalendar(ctx, now, now.AddDate(0, 0, 7))
	if err != nil {
		fmt.Printf("calendar failed: %v\n", err)
		return
	}
	for _, e := range events {
		fmt.Printf("%s  %s - %s  %s\n", e.Title, e.Start.Format(time.RFC3339), e.End.Format("15:04"), e.Booking.RoomName)
	}
}

func createBooking(ctx context.Context, scheduler *bookingsched.Scheduler, args []string) {
	if len(args) != 4 {
		fmt.Println("usage: book <translator-id> <RFC3339 start> <30|60> <lang>")
		return
	}
	start, err := time.Parse(time.RFC3339, args[1])
	if err != nil {
		fmt.Printf("bad start time: %v\n", err)
		return
	}
	minutes, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Printf("bad duration: %v\n", err)
		return
	}
	created, err := scheduler.CreateBooking(ctx, domainbooking.Draft{
		TranslatorID:    args[0],
		StartTime:       start,
		DurationMinutes: minutes,
		Language:        args[3],
	})
	if err != nil {
		if errors.Is(err, linguacall_errors.ErrConflict) {
			fmt.Println("slot unavailable, pick another time")
			return
		}
		fmt.Printf("booking failed: %v\n", err)
		return
	}
	fmt.Printf("booked %s at %s (room %s)\n", created.ID, created.StartTime.Format(time.RFC3339), created.RoomName)
}
