// Package parse turns schedule expressions like "every monday at 09:00" into
// their structured form. The grammar is LL(1); the parser is a hand-written
// recursive descent over the token stream, which keeps error spans precise
// enough for caret diagnostics.
package parse

import (
	"fmt"

	"github.com/prasrvenkat/hron/schedule"
)

// Parse parses a schedule expression. Errors are always *schedule.Error with
// the offending span of the input attached.
func Parse(input string) (*schedule.Data, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, schedule.NewParseError("empty expression", schedule.Span{}, input, "")
	}

	p := &parser{tokens: tokens, input: input}
	data, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.peek() != nil {
		return nil, p.errorf(p.currentSpan(), "unexpected tokens after expression")
	}
	return data, nil
}

type parser struct {
	tokens []token
	pos    int
	input  string
}

func (p *parser) peek() *token {
	if p.pos < len(p.tokens) {
		return &p.tokens[p.pos]
	}
	return nil
}

func (p *parser) peekKind() tokenKind {
	if tok := p.peek(); tok != nil {
		return tok.kind
	}
	return -1
}

func (p *parser) advance() *token {
	tok := p.peek()
	if tok != nil {
		p.pos++
	}
	return tok
}

func (p *parser) currentSpan() schedule.Span {
	if tok := p.peek(); tok != nil {
		return tok.span
	}
	if len(p.tokens) > 0 {
		end := p.tokens[len(p.tokens)-1].span.End
		return schedule.Span{Start: end, End: end}
	}
	return schedule.Span{}
}

func (p *parser) errorf(span schedule.Span, format string, args ...any) error {
	return schedule.NewParseError(fmt.Sprintf(format, args...), span, p.input, "")
}

func (p *parser) errorAtEnd(message string) error {
	span := schedule.Span{}
	if len(p.tokens) > 0 {
		end := p.tokens[len(p.tokens)-1].span.End
		span = schedule.Span{Start: end, End: end}
	}
	return schedule.NewParseError(message, span, p.input, "")
}

func (p *parser) consume(expected string, kind tokenKind) (*token, error) {
	span := p.currentSpan()
	if tok := p.peek(); tok != nil {
		if tok.kind == kind {
			p.pos++
			return tok, nil
		}
		return nil, p.errorf(span, "expected %s", expected)
	}
	return nil, p.errorAtEnd("expected " + expected)
}

func (p *parser) parseExpression() (*schedule.Data, error) {
	span := p.currentSpan()

	var expr schedule.Expr
	var err error
	switch p.peekKind() {
	case tokEvery:
		p.advance()
		expr, err = p.parseEvery()
	case tokOn:
		p.advance()
		expr, err = p.parseSingleDate()
	case tokOrdinal, tokLast:
		expr, err = p.parseOrdinalRepeat()
	default:
		return nil, p.errorf(span, "expected 'every', 'on', or an ordinal (first, second, ...)")
	}
	if err != nil {
		return nil, err
	}

	return p.parseTrailingClauses(expr)
}

// parseTrailingClauses reads the optional modifiers, which only compose in
// this order: except, until, starting, during, in.
func (p *parser) parseTrailingClauses(expr schedule.Expr) (*schedule.Data, error) {
	b := schedule.NewBuilder(expr)

	if p.peekKind() == tokExcept {
		p.advance()
		excs, err := p.parseExceptionList()
		if err != nil {
			return nil, err
		}
		b.Except(excs...)
	}

	if p.peekKind() == tokUntil {
		p.advance()
		until, err := p.parseUntil()
		if err != nil {
			return nil, err
		}
		b.Until(until)
	}

	if p.peekKind() == tokStarting {
		p.advance()
		if p.peekKind() != tokISODate {
			return nil, p.errorf(p.currentSpan(), "expected ISO date (YYYY-MM-DD) after 'starting'")
		}
		b.Starting(p.advance().date)
	}

	if p.peekKind() == tokDuring {
		p.advance()
		months, err := p.parseMonthList()
		if err != nil {
			return nil, err
		}
		b.During(months...)
	}

	if p.peekKind() == tokIn {
		p.advance()
		if p.peekKind() != tokTimezone {
			return nil, p.errorf(p.currentSpan(), "expected timezone after 'in'")
		}
		b.In(p.advance().timezone)
	}

	return b.Build(), nil
}

func (p *parser) parseExceptionList() ([]schedule.Exception, error) {
	exc, err := p.parseException()
	if err != nil {
		return nil, err
	}
	excs := []schedule.Exception{exc}
	for p.peekKind() == tokComma {
		p.advance()
		exc, err := p.parseException()
		if err != nil {
			return nil, err
		}
		excs = append(excs, exc)
	}
	return excs, nil
}

func (p *parser) parseException() (schedule.Exception, error) {
	tok := p.peek()
	if tok == nil {
		return nil, p.errorAtEnd("expected exception date")
	}
	switch tok.kind {
	case tokISODate:
		p.advance()
		return schedule.ISOException{Value: tok.date}, nil
	case tokMonthName:
		p.advance()
		day, err := p.parseDayNumber("expected day number after month name in exception")
		if err != nil {
			return nil, err
		}
		return schedule.NamedException{Month: tok.month, Day: day}, nil
	}
	return nil, p.errorf(p.currentSpan(), "expected ISO date or month-day in exception")
}

func (p *parser) parseUntil() (schedule.Until, error) {
	tok := p.peek()
	if tok == nil {
		return nil, p.errorAtEnd("expected until date")
	}
	switch tok.kind {
	case tokISODate:
		p.advance()
		return schedule.ISOUntil{Value: tok.date}, nil
	case tokMonthName:
		p.advance()
		day, err := p.parseDayNumber("expected day number after month name in until")
		if err != nil {
			return nil, err
		}
		return schedule.NamedUntil{Month: tok.month, Day: day}, nil
	}
	return nil, p.errorf(p.currentSpan(), "expected ISO date or month-day after 'until'")
}

// parseDayNumber accepts a bare number or an ordinal number (14 or 14th).
func (p *parser) parseDayNumber(errMsg string) (int, error) {
	tok := p.peek()
	if tok == nil {
		return 0, p.errorAtEnd(errMsg)
	}
	switch tok.kind {
	case tokNumber, tokOrdinalNumber:
		p.advance()
		return tok.number, nil
	}
	return 0, p.errorf(p.currentSpan(), "%s", errMsg)
}

func (p *parser) parseEvery() (schedule.Expr, error) {
	if p.peek() == nil {
		return nil, p.errorAtEnd("expected repeater")
	}
	switch p.peekKind() {
	case tokYear:
		p.advance()
		return p.parseYearRepeat(1)
	case tokDay:
		return p.parseDayRepeat(1, schedule.EveryDay{})
	case tokWeekday:
		p.advance()
		return p.parseDayRepeat(1, schedule.WeekdayFilter{})
	case tokWeekend:
		p.advance()
		return p.parseDayRepeat(1, schedule.WeekendFilter{})
	case tokDayName:
		days, err := p.parseDayList()
		if err != nil {
			return nil, err
		}
		return p.parseDayRepeat(1, schedule.DayListFilter{Days: days})
	case tokMonth:
		p.advance()
		return p.parseMonthRepeat(1)
	case tokNumber:
		return p.parseNumberRepeat()
	}
	return nil, p.errorf(p.currentSpan(),
		"expected day, weekday, weekend, year, day name, month, or number after 'every'")
}

func (p *parser) parseDayRepeat(interval int, filter schedule.DayFilter) (schedule.Expr, error) {
	if _, ok := filter.(schedule.EveryDay); ok {
		if _, err := p.consume("'day'", tokDay); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume("'at'", tokAt); err != nil {
		return nil, err
	}
	times, err := p.parseTimeList()
	if err != nil {
		return nil, err
	}
	return schedule.DayRepeat{Interval: interval, Filter: filter, Times: times}, nil
}

func (p *parser) parseNumberRepeat() (schedule.Expr, error) {
	span := p.currentSpan()
	num := p.peek().number
	if num == 0 {
		return nil, p.errorf(span, "interval must be at least 1")
	}
	p.advance()

	switch p.peekKind() {
	case tokWeek:
		p.advance()
		return p.parseWeekRepeat(num)
	case tokUnit:
		return p.parseIntervalRepeat(num)
	case tokDay:
		return p.parseDayRepeat(num, schedule.EveryDay{})
	case tokMonth:
		p.advance()
		return p.parseMonthRepeat(num)
	case tokYear:
		p.advance()
		return p.parseYearRepeat(num)
	}
	return nil, p.errorf(p.currentSpan(),
		"expected 'weeks', 'min', 'minutes', 'hour', 'hours', 'day(s)', 'month(s)', or 'year(s)' after number")
}

func (p *parser) parseIntervalRepeat(interval int) (schedule.Expr, error) {
	unit := p.advance().unit

	if _, err := p.consume("'from'", tokFrom); err != nil {
		return nil, err
	}
	from, err := p.parseTime()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume("'to'", tokTo); err != nil {
		return nil, err
	}
	to, err := p.parseTime()
	if err != nil {
		return nil, err
	}

	var filter schedule.DayFilter
	if p.peekKind() == tokOn {
		p.advance()
		filter, err = p.parseDayFilter()
		if err != nil {
			return nil, err
		}
	}

	return schedule.IntervalRepeat{Interval: interval, Unit: unit, From: from, To: to, Filter: filter}, nil
}

func (p *parser) parseWeekRepeat(interval int) (schedule.Expr, error) {
	if _, err := p.consume("'on'", tokOn); err != nil {
		return nil, err
	}
	days, err := p.parseDayList()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume("'at'", tokAt); err != nil {
		return nil, err
	}
	times, err := p.parseTimeList()
	if err != nil {
		return nil, err
	}
	return schedule.WeekRepeat{Interval: interval, Days: days, Times: times}, nil
}

func (p *parser) parseMonthRepeat(interval int) (schedule.Expr, error) {
	if _, err := p.consume("'on'", tokOn); err != nil {
		return nil, err
	}
	if _, err := p.consume("'the'", tokThe); err != nil {
		return nil, err
	}

	var target schedule.MonthTarget
	switch p.peekKind() {
	case tokLast:
		p.advance()
		switch p.peekKind() {
		case tokDay:
			p.advance()
			target = schedule.LastDay{}
		case tokWeekday:
			p.advance()
			target = schedule.LastWeekday{}
		default:
			return nil, p.errorf(p.currentSpan(), "expected 'day' or 'weekday' after 'last'")
		}
	case tokOrdinalNumber:
		specs, err := p.parseDaySpecList()
		if err != nil {
			return nil, err
		}
		target = schedule.MonthDays{Specs: specs}
	case tokNext, tokPrevious, tokNearest:
		var err error
		target, err = p.parseNearestWeekday()
		if err != nil {
			return nil, err
		}
	default:
		return nil, p.errorf(p.currentSpan(),
			"expected ordinal day (1st, 15th), 'last', or '[next|previous] nearest' after 'the'")
	}

	if _, err := p.consume("'at'", tokAt); err != nil {
		return nil, err
	}
	times, err := p.parseTimeList()
	if err != nil {
		return nil, err
	}
	return schedule.MonthRepeat{Interval: interval, Target: target, Times: times}, nil
}

func (p *parser) parseNearestWeekday() (schedule.MonthTarget, error) {
	direction := schedule.DirectionNone
	switch p.peekKind() {
	case tokNext:
		p.advance()
		direction = schedule.DirectionNext
	case tokPrevious:
		p.advance()
		direction = schedule.DirectionPrevious
	}

	if _, err := p.consume("'nearest'", tokNearest); err != nil {
		return nil, err
	}
	if _, err := p.consume("'weekday'", tokWeekday); err != nil {
		return nil, err
	}
	if _, err := p.consume("'to'", tokTo); err != nil {
		return nil, err
	}

	if p.peekKind() != tokOrdinalNumber {
		return nil, p.errorf(p.currentSpan(), "expected ordinal day number")
	}
	day := p.advance().number

	return schedule.NearestWeekday{Day: day, Direction: direction}, nil
}

func (p *parser) parseOrdinalRepeat() (schedule.Expr, error) {
	ordinal, err := p.parseOrdinalPosition()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	if tok == nil || tok.kind != tokDayName {
		return nil, p.errorf(p.currentSpan(), "expected day name after ordinal")
	}
	weekday := tok.weekday
	p.advance()

	if _, err := p.consume("'of'", tokOf); err != nil {
		return nil, err
	}
	if _, err := p.consume("'every'", tokEvery); err != nil {
		return nil, err
	}

	interval := 1
	if p.peekKind() == tokNumber {
		interval = p.peek().number
		if interval == 0 {
			return nil, p.errorf(p.currentSpan(), "interval must be at least 1")
		}
		p.advance()
	}

	if _, err := p.consume("'month'", tokMonth); err != nil {
		return nil, err
	}
	if _, err := p.consume("'at'", tokAt); err != nil {
		return nil, err
	}
	times, err := p.parseTimeList()
	if err != nil {
		return nil, err
	}

	return schedule.OrdinalRepeat{Interval: interval, Ordinal: ordinal, Weekday: weekday, Times: times}, nil
}

func (p *parser) parseYearRepeat(interval int) (schedule.Expr, error) {
	if _, err := p.consume("'on'", tokOn); err != nil {
		return nil, err
	}

	var target schedule.YearTarget
	switch p.peekKind() {
	case tokThe:
		p.advance()
		var err error
		target, err = p.parseYearTarget()
		if err != nil {
			return nil, err
		}
	case tokMonthName:
		month := p.advance().month
		day, err := p.parseDayNumber("expected day number after month name")
		if err != nil {
			return nil, err
		}
		target = schedule.YearDate{Month: month, Day: day}
	default:
		return nil, p.errorf(p.currentSpan(), "expected month name or 'the' after 'every year on'")
	}

	if _, err := p.consume("'at'", tokAt); err != nil {
		return nil, err
	}
	times, err := p.parseTimeList()
	if err != nil {
		return nil, err
	}
	return schedule.YearRepeat{Interval: interval, Target: target, Times: times}, nil
}

func (p *parser) parseYearTarget() (schedule.YearTarget, error) {
	switch p.peekKind() {
	case tokLast:
		p.advance()
		switch p.peekKind() {
		case tokWeekday:
			p.advance()
			if _, err := p.consume("'of'", tokOf); err != nil {
				return nil, err
			}
			month, err := p.parseMonthName()
			if err != nil {
				return nil, err
			}
			return schedule.YearLastWeekday{Month: month}, nil
		case tokDayName:
			weekday := p.advance().weekday
			if _, err := p.consume("'of'", tokOf); err != nil {
				return nil, err
			}
			month, err := p.parseMonthName()
			if err != nil {
				return nil, err
			}
			return schedule.YearOrdinalWeekday{Ordinal: schedule.Last, Weekday: weekday, Month: month}, nil
		}
		return nil, p.errorf(p.currentSpan(), "expected 'weekday' or day name after 'last' in yearly expression")

	case tokOrdinal:
		ordinal, err := p.parseOrdinalPosition()
		if err != nil {
			return nil, err
		}
		if p.peekKind() != tokDayName {
			return nil, p.errorf(p.currentSpan(), "expected day name after ordinal in yearly expression")
		}
		weekday := p.advance().weekday
		if _, err := p.consume("'of'", tokOf); err != nil {
			return nil, err
		}
		month, err := p.parseMonthName()
		if err != nil {
			return nil, err
		}
		return schedule.YearOrdinalWeekday{Ordinal: ordinal, Weekday: weekday, Month: month}, nil

	case tokOrdinalNumber:
		day := p.advance().number
		if _, err := p.consume("'of'", tokOf); err != nil {
			return nil, err
		}
		month, err := p.parseMonthName()
		if err != nil {
			return nil, err
		}
		return schedule.YearDayOfMonth{Day: day, Month: month}, nil
	}
	return nil, p.errorf(p.currentSpan(), "expected ordinal, day number, or 'last' after 'the' in yearly expression")
}

func (p *parser) parseMonthName() (schedule.Month, error) {
	if p.peekKind() != tokMonthName {
		return 0, p.errorf(p.currentSpan(), "expected month name")
	}
	return p.advance().month, nil
}

func (p *parser) parseOrdinalPosition() (schedule.Ordinal, error) {
	span := p.currentSpan()
	switch p.peekKind() {
	case tokOrdinal:
		return p.advance().ordinal, nil
	case tokLast:
		p.advance()
		return schedule.Last, nil
	}
	return 0, p.errorf(span, "expected ordinal (first, second, third, fourth, fifth, last)")
}

func (p *parser) parseSingleDate() (schedule.Expr, error) {
	date, err := p.parseDateSpec()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume("'at'", tokAt); err != nil {
		return nil, err
	}
	times, err := p.parseTimeList()
	if err != nil {
		return nil, err
	}
	return schedule.SingleDate{Date: date, Times: times}, nil
}

func (p *parser) parseDateSpec() (schedule.DateSpec, error) {
	tok := p.peek()
	if tok == nil {
		return nil, p.errorAtEnd("expected date")
	}
	switch tok.kind {
	case tokISODate:
		p.advance()
		return schedule.ISODate{Value: tok.date}, nil
	case tokMonthName:
		p.advance()
		day, err := p.parseDayNumber("expected day number after month name")
		if err != nil {
			return nil, err
		}
		return schedule.NamedDate{Month: tok.month, Day: day}, nil
	}
	return nil, p.errorf(p.currentSpan(), "expected date (ISO date or month name)")
}

func (p *parser) parseDayFilter() (schedule.DayFilter, error) {
	switch p.peekKind() {
	case tokDay:
		p.advance()
		return schedule.EveryDay{}, nil
	case tokWeekday:
		p.advance()
		return schedule.WeekdayFilter{}, nil
	case tokWeekend:
		p.advance()
		return schedule.WeekendFilter{}, nil
	case tokDayName:
		days, err := p.parseDayList()
		if err != nil {
			return nil, err
		}
		return schedule.DayListFilter{Days: days}, nil
	}
	return nil, p.errorf(p.currentSpan(), "expected 'day', 'weekday', 'weekend', or day name")
}

func (p *parser) parseDayList() ([]schedule.Weekday, error) {
	if p.peekKind() != tokDayName {
		return nil, p.errorf(p.currentSpan(), "expected day name")
	}
	days := []schedule.Weekday{p.advance().weekday}
	for p.peekKind() == tokComma {
		p.advance()
		if p.peekKind() != tokDayName {
			return nil, p.errorf(p.currentSpan(), "expected day name after ','")
		}
		days = append(days, p.advance().weekday)
	}
	return days, nil
}

func (p *parser) parseDaySpecList() ([]schedule.DayOfMonthSpec, error) {
	spec, err := p.parseDaySpec()
	if err != nil {
		return nil, err
	}
	specs := []schedule.DayOfMonthSpec{spec}
	for p.peekKind() == tokComma {
		p.advance()
		spec, err := p.parseDaySpec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (p *parser) parseDaySpec() (schedule.DayOfMonthSpec, error) {
	if p.peekKind() != tokOrdinalNumber {
		return nil, p.errorf(p.currentSpan(), "expected ordinal day number")
	}
	start := p.advance().number

	if p.peekKind() == tokTo {
		p.advance()
		if p.peekKind() != tokOrdinalNumber {
			return nil, p.errorf(p.currentSpan(), "expected ordinal day number after 'to'")
		}
		end := p.advance().number
		return schedule.DayRange{Start: start, End: end}, nil
	}
	return schedule.SingleDay{Day: start}, nil
}

func (p *parser) parseMonthList() ([]schedule.Month, error) {
	month, err := p.parseMonthName()
	if err != nil {
		return nil, err
	}
	months := []schedule.Month{month}
	for p.peekKind() == tokComma {
		p.advance()
		month, err := p.parseMonthName()
		if err != nil {
			return nil, err
		}
		months = append(months, month)
	}
	return months, nil
}

func (p *parser) parseTimeList() ([]schedule.TimeOfDay, error) {
	t, err := p.parseTime()
	if err != nil {
		return nil, err
	}
	times := []schedule.TimeOfDay{t}
	for p.peekKind() == tokComma {
		p.advance()
		t, err := p.parseTime()
		if err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, nil
}

func (p *parser) parseTime() (schedule.TimeOfDay, error) {
	span := p.currentSpan()
	if p.peekKind() != tokTime {
		return schedule.TimeOfDay{}, p.errorf(span, "expected time (HH:MM)")
	}
	return p.advance().time, nil
}
