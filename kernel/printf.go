package kernel

// Delayer waits at least the given number of device cycles. On hardware
// it is backed by a timer; host tests use NoDelay.
type Delayer interface {
	Wait(cycles uint32)
}

type noDelay struct{}

func (noDelay) Wait(uint32) {}

var NoDelay Delayer = noDelay{}

// Console writes diagnostics to uart0, one byte per store. The uart
// needs settle cycles after each byte before it can take the next one.
type Console struct {
	tx     Register
	delay  Delayer
	settle uint32
}

func NewConsole(bus Bus, delay Delayer, settle uint32) *Console {
	if delay == nil {
		delay = NoDelay
	}
	return &Console{
		tx:     NewRegister(bus, UART0, 8, WO),
		delay:  delay,
		settle: settle,
	}
}

func (c *Console) Putc(b byte) {
	c.tx.Set(Word(b))
	c.delay.Wait(c.settle)
}

func (c *Console) printInt(num int) {
	var buf [20]byte
	i := 0

	if num == 0 {
		c.Putc('0')
		return
	}
	u := uint(num)
	if num < 0 {
		c.Putc('-')
		// -num overflows for the minimum int
		u = uint(-(num + 1)) + 1
	}

	for u > 0 {
		buf[i] = byte(u%10) + '0'
		i++
		u = u / 10
	}

	for i = i - 1; i >= 0; i-- {
		c.Putc(buf[i])
	}
}

const hexdigits = "0123456789ABCDEF"

func (c *Console) printHexDigits(val Word) {
	for i := 7; i >= 0; i-- {
		c.Putc(hexdigits[(val>>(uint(i)*4))&0xF])
	}
}

func (c *Console) PrintString(str string) {
	for i := 0; i < len(str); i++ {
		c.Putc(str[i])
	}
}

// PrintHex prints val as "0x" and eight upper-case digits, followed by a
// space.
func (c *Console) PrintHex(val Word) {
	c.Putc('0')
	c.Putc('x')
	c.printHexDigits(val)
	c.Putc(' ')
}

// Printf understands %d, %s, %c, %x and %%.
func (c *Console) Printf(format string, args ...interface{}) {
	argIdx := 0
	for i := 0; i < len(format); i++ {
		if format[i] == '%' && i+1 < len(format) {
			i++
			if format[i] == '%' {
				c.Putc('%')
				continue
			}
			if argIdx >= len(args) {
				c.Putc('%')
				c.Putc('!')
				c.Putc(format[i])
				continue
			}
			switch format[i] {
			case 'd':
				switch v := args[argIdx].(type) {
				case int:
					c.printInt(v)
				case Word:
					c.printInt(int(v))
				default:
					c.Putc('?')
				}
			case 's':
				if s, ok := args[argIdx].(string); ok {
					c.PrintString(s)
				} else {
					c.Putc('?')
				}
			case 'c':
				switch v := args[argIdx].(type) {
				case int:
					c.Putc(byte(v))
				case int32:
					c.Putc(byte(v))
				case byte:
					c.Putc(v)
				default:
					c.Putc('?')
				}
			case 'x':
				switch v := args[argIdx].(type) {
				case int:
					c.printHexDigits(Word(v))
				case Word:
					c.printHexDigits(v)
				case uint32:
					c.printHexDigits(Word(v))
				default:
					c.Putc('?')
				}
			default:
				c.Putc('%')
				c.Putc(format[i])
				continue
			}
			argIdx++
		} else {
			c.Putc(format[i])
		}
	}
}
