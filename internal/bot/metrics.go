package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "residentbot_registrations_started_total",
		Help: "Сколько раз пользователи начинали анкету.",
	})

	adminDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "residentbot_admin_decisions_total",
		Help: "Решения админа по кандидатам.",
	}, []string{"decision"})

	photosReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "residentbot_photos_received_total",
		Help: "Принятые на проверку фото.",
	})
)
