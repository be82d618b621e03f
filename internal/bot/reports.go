package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"
)

func fmtDel(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// handleDump — /db: полное содержимое трёх таблиц, частями.
func (b *Bot) handleDump(ctx context.Context, chatID int64) {
	houses, residents, vehicles, err := b.store.DumpAll(ctx)
	if err != nil {
		b.log.Error("dump failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка чтения базы"))
		return
	}

	var sb strings.Builder
	sb.WriteString("Таблица houses\n id | chat_id | name | city | address | date_del \n")
	for _, h := range houses {
		sb.WriteString(fmt.Sprintf("%d | %d | %s | %s | %s | %s\n",
			h.ID, h.ChatID, h.Name, h.City, h.Address, fmtDel(h.DateDel)))
	}

	sb.WriteString("\nТаблица residents\n id | tg_id | name | surname | house | apartment | phone | date_del \n")
	for _, r := range residents {
		houseID := int64(0)
		if r.HouseID != nil {
			houseID = *r.HouseID
		}
		sb.WriteString(fmt.Sprintf("%d | %d | %s | %s | %d | %s | %s | %s\n",
			r.ID, r.TgID, r.Name, r.Surname, houseID, r.Apartment, r.Phone, fmtDel(r.DateDel)))
	}

	sb.WriteString("\nТаблица vehicles\n id | resident | plate | date_del \n")
	for _, v := range vehicles {
		sb.WriteString(fmt.Sprintf("%d | %d | %s | %s\n", v.ID, v.ResidentID, v.Plate, fmtDel(v.DateDel)))
	}

	b.sendChunks(chatID, sb.String())
}

// handleCheck — /check <chat_id>: активные жильцы одного дома.
func (b *Bot) handleCheck(ctx context.Context, chatID, houseChat int64) {
	house, err := b.store.FindHouseByChat(ctx, houseChat)
	if err != nil {
		b.log.Error("find house failed", "chat", houseChat, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка чтения базы"))
		return
	}
	if house == nil {
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Дом %d не найден.", houseChat)))
		return
	}
	b.sendChunks(chatID, b.houseReport(ctx, house.ID, houseChat))
}

// handleCheckAll — /checkall: активные жильцы по всем домам.
func (b *Bot) handleCheckAll(ctx context.Context, chatID int64) {
	houses, err := b.store.ListHouses(ctx)
	if err != nil {
		b.log.Error("list houses failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка чтения базы"))
		return
	}
	if len(houses) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "Домов пока нет."))
		return
	}
	var sb strings.Builder
	for _, h := range houses {
		sb.WriteString(b.houseReport(ctx, h.ID, h.ChatID))
		sb.WriteString("\n")
	}
	b.sendChunks(chatID, sb.String())
}

func (b *Bot) houseReport(ctx context.Context, houseID, houseChat int64) string {
	entries, err := b.store.ListByHouse(ctx, houseID, true)
	if err != nil {
		b.log.Error("list by house failed", "house", houseID, "err", err)
		return fmt.Sprintf("Дом %d: ошибка чтения\n", houseChat)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Дом %d — активных жильцов: %d\n", houseChat, len(entries)))
	for _, e := range entries {
		r := e.Resident
		line := fmt.Sprintf("— %s %s, кв. %s, тел. %s", r.Name, r.Surname, r.Apartment, r.Phone)
		if len(e.Plates) > 0 {
			line += ", авто: " + strings.Join(e.Plates, ", ")
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// handleExport — /export: реестр жильцов одним xlsx-файлом.
func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	houses, err := b.store.ListHouses(ctx)
	if err != nil {
		b.log.Error("list houses failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "Ошибка чтения базы"))
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := []interface{}{"house_chat_id", "house_name", "name", "surname", "apartment", "phone", "plates", "active"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Ошибка формирования файла (заголовок)"))
		return
	}

	row := 2
	for _, h := range houses {
		entries, err := b.store.ListByHouse(ctx, h.ID, false)
		if err != nil {
			b.log.Error("list by house failed", "house", h.ID, "err", err)
			continue
		}
		for _, e := range entries {
			r := e.Resident
			excelRow := []interface{}{
				h.ChatID, h.Name, r.Name, r.Surname, r.Apartment, r.Phone,
				strings.Join(e.Plates, ", "), r.Active(),
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				b.send(tgbotapi.NewMessage(chatID, "Ошибка формирования файла (ячейки)"))
				return
			}
			if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
				b.send(tgbotapi.NewMessage(chatID, "Ошибка формирования файла (строки)"))
				return
			}
			row++
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Ошибка записи файла"))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("residents_%s.xlsx", time.Now().Format("20060102_150405")),
		Bytes: buf.Bytes(),
	})
	doc.Caption = "Реестр жильцов по всем домам."
	b.send(doc)
}
