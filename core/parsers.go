package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
)

const (
	DateDelimiter  = "."
	TimeDelimiter  = ":"
	RangeSeparator = "-"
)

// Date is a calendar day without a time-of-day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) At(clock Clock) time.Time {
	return time.Date(d.Year, d.Month, d.Day, clock.Hour, clock.Minute, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Clock is a time-of-day with minute resolution.
type Clock struct {
	Hour   int
	Minute int
}

func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

type ParserOption func(*Parser)

func WithNow(now func() time.Time) ParserOption {
	return func(p *Parser) {
		p.now = now
	}
}

func WithDelimiters(date string, clock string) ParserOption {
	return func(p *Parser) {
		p.dateDelimiter = date
		p.timeDelimiter = clock
	}
}

// Parser turns loosely formatted date and time tokens into Date and Clock
// values. Components missing from a date default to the current month and year
// as reported by the parser's clock.
type Parser struct {
	now           func() time.Time
	dateDelimiter string
	timeDelimiter string
}

func NewParser(options ...ParserOption) *Parser {
	parser := &Parser{
		now:           time.Now,
		dateDelimiter: DateDelimiter,
		timeDelimiter: TimeDelimiter,
	}

	for _, option := range options {
		option(parser)
	}

	return parser
}

// ParseDate reads day[.month[.year]].
func (p *Parser) ParseDate(text string) mo.Option[Date] {
	return p.dateFromComponents(p.dateComponents(text))
}

// ParseTime reads hour[:minute].
func (p *Parser) ParseTime(text string) mo.Option[Clock] {
	text = strings.TrimSpace(text)
	if text == "" {
		return mo.None[Clock]()
	}

	elements := strings.Split(text, p.timeDelimiter)
	if len(elements) > 2 {
		return mo.None[Clock]()
	}

	numbers, ok := atoiAll(elements)
	if !ok {
		return mo.None[Clock]()
	}

	clock := Clock{Hour: numbers[0]}
	if len(numbers) == 2 {
		clock.Minute = numbers[1]
	}

	if clock.Hour < 0 || clock.Hour > 23 || clock.Minute < 0 || clock.Minute > 59 {
		return mo.None[Clock]()
	}

	return mo.Some(clock)
}

// ParseDateRange splits "start-end" and parses both sides. When one side names
// fewer components than the other it borrows the missing higher-order ones, so
// "5.-10.6.24" reads as the 5th to the 10th of June 2024.
func (p *Parser) ParseDateRange(text string) (mo.Option[Date], mo.Option[Date]) {
	first, second, ok := splitRange(text)
	if !ok {
		return p.dateFromComponents(normalizeYear(p.dateComponents(first))), mo.None[Date]()
	}

	start, end := p.dateComponents(first), p.dateComponents(second)
	start, end = borrow(start, end), borrow(end, start)

	return p.dateFromComponents(normalizeYear(start)), p.dateFromComponents(normalizeYear(end))
}

func (p *Parser) ParseTimeRange(text string) (mo.Option[Clock], mo.Option[Clock]) {
	first, second, ok := splitRange(text)
	if !ok {
		return p.ParseTime(first), mo.None[Clock]()
	}

	return p.ParseTime(first), p.ParseTime(second)
}

func (p *Parser) dateComponents(text string) []string {
	text = strings.TrimRight(strings.TrimSpace(text), p.dateDelimiter)
	if text == "" {
		return nil
	}

	return strings.Split(text, p.dateDelimiter)
}

func (p *Parser) dateFromComponents(elements []string) mo.Option[Date] {
	if len(elements) == 0 || len(elements) > 3 {
		return mo.None[Date]()
	}

	numbers, ok := atoiAll(elements)
	if !ok {
		return mo.None[Date]()
	}

	now := p.now()
	year, month, day := now.Year(), int(now.Month()), numbers[0]

	if len(numbers) >= 2 {
		month = numbers[1]
	}

	if len(numbers) == 3 {
		year = numbers[2]
	}

	return newDate(year, month, day)
}

func newDate(year int, month int, day int) mo.Option[Date] {
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return mo.None[Date]()
	}

	// day zero of the following month is the last day of this one
	if day > time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day() {
		return mo.None[Date]()
	}

	return mo.Some(Date{Year: year, Month: time.Month(month), Day: day})
}

func splitRange(text string) (string, string, bool) {
	parts := strings.Split(text, RangeSeparator)
	if len(parts) != 2 {
		return text, "", false
	}

	return parts[0], parts[1], true
}

// borrow completes short with the trailing components of long.
func borrow(short []string, long []string) []string {
	if len(short) == 0 || len(short) >= len(long) || len(long) > 3 {
		return short
	}

	completed := make([]string, 0, len(long))
	completed = append(completed, short...)

	return append(completed, long[len(short):]...)
}

// normalizeYear turns a two-digit year into one of the 2000s.
func normalizeYear(elements []string) []string {
	if len(elements) != 3 {
		return elements
	}

	year, err := strconv.Atoi(strings.TrimSpace(elements[2]))
	if err != nil || year < 0 || year >= 100 {
		return elements
	}

	normalized := append([]string(nil), elements...)
	normalized[2] = strconv.Itoa(year + 2000)

	return normalized
}

func atoiAll(elements []string) ([]int, bool) {
	numbers := make([]int, len(elements))

	for i, element := range elements {
		number, err := strconv.Atoi(strings.TrimSpace(element))
		if err != nil {
			return nil, false
		}

		numbers[i] = number
	}

	return numbers, true
}
