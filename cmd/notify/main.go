package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"

	"github.com/filaops/scheduler/backend/internal/config"
	"github.com/filaops/scheduler/backend/internal/domain"
)

// notify consumes both queues the API publishes to: email_queue carries
// account mails addressed to individual users, schedule_events carries
// scheduling notifications that are digested into mails for the planner
// address.

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * configuration
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * mail client
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("failed to create mail client", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("failed to connect to mail server", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open rabbitmq channel", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	for _, queue := range []string{"email_queue", "schedule_events"} {
		if _, err := ch.QueueDeclare(
			queue,
			true,  // durable
			false, // do not auto-delete while there is no consumer
			false, // not exclusive
			false, // wait for the declare to be confirmed
			nil,
		); err != nil {
			logger.Error("failed to declare queue", slog.String("queue", queue), slog.String("error", err.Error()))
			return
		}
	}

	mailMsgs, err := ch.Consume("email_queue", "", false, false, false, false, nil)
	if err != nil {
		logger.Error("failed to consume email queue", slog.String("error", err.Error()))
		os.Exit(1)
	}

	eventMsgs, err := ch.Consume("schedule_events", "", false, false, false, false, nil)
	if err != nil {
		logger.Error("failed to consume event queue", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		consumeMails(ctx, logger, cfg, client, mailMsgs)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		consumeEvents(ctx, logger, cfg, client, eventMsgs)
	}()

	logger.Info("waiting for messages... (CTRL+C to quit)")
	<-sigChan

	slog.Info("shutting down notify worker...")
	cancel()
	wg.Wait()
	slog.Info("notify worker stopped")
}

func consumeMails(ctx context.Context, logger *slog.Logger, cfg *config.Config, client *mail.Client, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-msgs:
			logger.Info("received mail message", slog.String("message", string(msg.Body)))

			mailMessage := domain.MailMessage{}
			if err := json.Unmarshal(msg.Body, &mailMessage); err != nil {
				logger.Error("failed to decode mail message", slog.String("error", err.Error()))
				_ = msg.Nack(false, false)
				continue
			}

			var templateFile, subject string
			switch mailMessage.Type {
			case "create_user":
				templateFile = "./templates/new_account_email.html"
				subject = "FilaOps Scheduler - Your Account"
			case "reset_password":
				templateFile = "./templates/reset_password_otp_email.html"
				subject = "FilaOps Scheduler - Password Reset"
			default:
				logger.Error("unsupported mail type", slog.String("type", mailMessage.Type))
				_ = msg.Nack(false, false)
				continue
			}

			if err := sendTemplated(cfg, client, mailMessage.To, subject, templateFile, mailMessage.Data); err != nil {
				logger.Error("failed to send mail", slog.String("error", err.Error()))
				_ = msg.Nack(false, true) // requeue, the SMTP server may just be down
				continue
			}

			_ = msg.Ack(false)
		}
	}
}

func consumeEvents(ctx context.Context, logger *slog.Logger, cfg *config.Config, client *mail.Client, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-msgs:
			logger.Info("received schedule event", slog.String("message", string(msg.Body)))

			event := domain.ScheduleEvent{}
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				logger.Error("failed to decode schedule event", slog.String("error", err.Error()))
				_ = msg.Nack(false, false)
				continue
			}

			var templateFile, subject string
			switch event.Type {
			case domain.EventAutoArrange:
				templateFile = "./templates/auto_arrange_email.html"
				subject = "FilaOps Scheduler - Jobs Rearranged"
			case domain.EventSchedulingImpossible:
				templateFile = "./templates/scheduling_impossible_email.html"
				subject = "FilaOps Scheduler - Job Could Not Be Scheduled"
			default:
				logger.Error("unsupported event type", slog.String("type", event.Type))
				_ = msg.Nack(false, false)
				continue
			}

			if err := sendTemplated(cfg, client, cfg.Email.PlannerAddress, subject, templateFile, event.Data); err != nil {
				logger.Error("failed to send event mail", slog.String("error", err.Error()))
				_ = msg.Nack(false, true)
				continue
			}

			_ = msg.Ack(false)
		}
	}
}

func sendTemplated(cfg *config.Config, client *mail.Client, to, subject, templateFile string, data any) error {
	m := mail.NewMsg()
	if err := m.From(cfg.Email.SMTP.Username); err != nil {
		return err
	}
	if err := m.To(to); err != nil {
		return err
	}

	tmpl, err := template.ParseFiles(templateFile)
	if err != nil {
		return err
	}
	if err := m.SetBodyHTMLTemplate(tmpl, data); err != nil {
		return err
	}
	m.Subject(subject)

	return client.DialAndSend(m)
}
