// This file defines seed catalogs: the built-in Raspberry Pi Pico kit and
// catalogs loaded from TOML files.
package sqlstore

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mesh-intelligence/kitbox/pkg/types"
)

// Catalog is a set of component types and boxes to seed, plus optional
// starting inventory.
type Catalog struct {
	Components []types.ComponentType `toml:"component"`
	Boxes      []types.Box           `toml:"box"`
	Stock      []StockLine           `toml:"stock"`
}

// StockLine places Quantity units of the named component in the named box.
type StockLine struct {
	Box       string `toml:"box"`
	Component string `toml:"component"`
	Quantity  int    `toml:"quantity"`
}

// LoadCatalog reads a TOML catalog with [[component]], [[box]], and
// optional [[stock]] tables.
func LoadCatalog(path string) (*Catalog, error) {
	var c Catalog
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	for i := range c.Components {
		c.Components[i].Name = strings.TrimSpace(c.Components[i].Name)
		if err := c.Components[i].Validate(); err != nil {
			return nil, fmt.Errorf("catalog component %d: %w", i+1, err)
		}
	}
	for i := range c.Boxes {
		c.Boxes[i].Name = strings.TrimSpace(c.Boxes[i].Name)
		if err := c.Boxes[i].Validate(); err != nil {
			return nil, fmt.Errorf("catalog box %d: %w", i+1, err)
		}
	}
	return &c, nil
}

// BuiltInCatalog returns the Raspberry Pi Pico advanced kit catalog with
// its sample boxes and sample inventory.
func BuiltInCatalog() *Catalog {
	c := &Catalog{
		Components: make([]types.ComponentType, 0, len(builtInComponents)),
		Boxes:      make([]types.Box, 0, len(builtInBoxes)),
		Stock:      append([]StockLine(nil), builtInStock...),
	}
	for _, bc := range builtInComponents {
		c.Components = append(c.Components, types.ComponentType{
			Name:        bc.name,
			Description: bc.description,
			MaxPerBox:   bc.maxPerBox,
			Category:    bc.category,
		})
	}
	for _, bb := range builtInBoxes {
		c.Boxes = append(c.Boxes, types.Box{Name: bb[0], Description: bb[1]})
	}
	return c
}

type builtInComponent struct {
	name        string
	description string
	maxPerBox   int
	category    string
}

var builtInComponents = []builtInComponent{
	{"Raspberry Pi Pico", "Main microcontroller board", 1, "Controllers"},
	{"IR Tracking Sensor", "Infrared tracking sensor module", 2, "Sensors"},
	{"IR Remote Module", "Infrared remote control module", 1, "Controllers"},
	{"Infrared Remote Control", "Remote control device", 1, "Controllers"},
	{"LED 5mm Red", "Standard red LED", 10, "Electronics"},
	{"RGB LED", "Multi-color LED module", 5, "Electronics"},
	{"Button Switch", "Tactile push button", 5, "Electronics"},
	{"Buzzer Module", "Active buzzer sound module", 2, "Electronics"},
	{"PIR Motion Sensor", "Passive infrared motion detector", 1, "Sensors"},
	{"Light Sensor (LDR)", "Light dependent resistor", 2, "Sensors"},
	{"Red Laser Transmitter", "Laser diode module", 1, "Electronics"},
	{"Vibration Sensor", "SW-420 vibration detection", 2, "Sensors"},
	{"Reed Switch", "Magnetic proximity switch", 3, "Electronics"},
	{"Round Magnet", "Small neodymium magnet", 5, "Hardware"},
	{"Soil Moisture Sensor", "Capacitive soil humidity sensor", 1, "Sensors"},
	{"Potentiometer 10K", "Variable resistor", 3, "Electronics"},
	{"Motor Slow Module", "Geared DC motor", 2, "Motors"},
	{"DC Motor 3V", "Small DC motor", 2, "Motors"},
	{"Fan Blade", "Plastic propeller", 2, "Hardware"},
	{"Servo SG90", "9g micro servo motor", 1, "Motors"},
	{"Joystick Module", "Analog XY joystick", 1, "Controllers"},
	{"RFID RC522 Module", "Radio frequency ID reader", 1, "Communication"},
	{"RFID Card", "Mifare 1K card", 3, "Communication"},
	{"RFID Key Tag", "Key fob tag", 2, "Communication"},
	{"TM1637 Display", "4-digit 7-segment display", 1, "Display"},
	{"Traffic Light Module", "RGB LED traffic light", 1, "Display"},
	{"Rotary Encoder", "KY-040 rotary encoder", 1, "Sensors"},
	{"LCD1602 Display", "16x2 character LCD", 1, "Display"},
	{"DHT11 Sensor", "Temperature & humidity sensor", 1, "Sensors"},
	{"Raindrop Sensor", "Water detection sensor", 1, "Sensors"},
	{"Flame Sensor", "IR flame detection sensor", 1, "Sensors"},
	{"SSD1306 OLED", `0.96" OLED display`, 1, "Display"},
	{"4x4 Keypad", "Matrix membrane keypad", 1, "Controllers"},
	{"Ultrasonic HC-SR04", "Distance measurement sensor", 1, "Sensors"},
	{"Collision Sensor", "Limit switch sensor", 2, "Sensors"},
	{"Car Chassis Kit", "Robot car frame with wheels", 1, "Hardware"},
	{"USB Cable Type-C", "USB-C to USB-A cable", 2, "Cables"},
	{"Breadboard 400 Point", "Half-size breadboard", 1, "Hardware"},
	{"Mini Breadboard", "170 point breadboard", 2, "Hardware"},
	{"Dupont Wires M-M", "Male to male jumpers", 20, "Cables"},
	{"Dupont Wires M-F", "Male to female jumpers", 20, "Cables"},
	{"Dupont Wires F-F", "Female to female jumpers", 20, "Cables"},
	{"M3 Screws", "Machine screws 8mm", 20, "Hardware"},
	{"M3 Nuts", "Hex nuts", 20, "Hardware"},
	{"Copper Standoffs", "M3 threaded spacers", 10, "Hardware"},
	{"Resistor 220Ω", "Current limiting resistor", 10, "Electronics"},
	{"Resistor 1KΩ", "Pull-up resistor", 10, "Electronics"},
	{"Resistor 10KΩ", "High value resistor", 5, "Electronics"},
}

const (
	kitA        = "Raspberry Pi Pico Kit A"
	kitB        = "Raspberry Pi Pico Kit B"
	electronics = "Electronics Components"
)

var builtInBoxes = [][2]string{
	{kitA, "Primary development kit with sensors and actuators"},
	{kitB, "Secondary kit for advanced projects"},
	{electronics, "Basic electronic components and resistors"},
	{"Sensor Collection", "Specialized sensors for environmental monitoring"},
	{"Motor & Actuator Kit", "Motors, servos, and mechanical components"},
}

var builtInStock = []StockLine{
	{kitA, "Raspberry Pi Pico", 1},
	{kitA, "Breadboard 400 Point", 1},
	{kitA, "LED 5mm Red", 5},
	{kitA, "Button Switch", 3},
	{kitA, "Resistor 220Ω", 5},
	{kitA, "Resistor 1KΩ", 5},
	{kitA, "Dupont Wires M-M", 10},
	{kitA, "USB Cable Type-C", 1},
	{kitA, "Ultrasonic HC-SR04", 1},
	{kitA, "Servo SG90", 1},
	{kitA, "DHT11 Sensor", 1},

	{kitB, "Raspberry Pi Pico", 1},
	{kitB, "Mini Breadboard", 2},
	{kitB, "RGB LED", 3},
	{kitB, "PIR Motion Sensor", 1},
	{kitB, "Light Sensor (LDR)", 1},
	{kitB, "Buzzer Module", 1},
	{kitB, "Joystick Module", 1},
	{kitB, "RFID RC522 Module", 1},
	{kitB, "RFID Card", 2},
	{kitB, "TM1637 Display", 1},

	{electronics, "Resistor 220Ω", 10},
	{electronics, "Resistor 1KΩ", 10},
	{electronics, "Resistor 10KΩ", 5},
	{electronics, "LED 5mm Red", 10},
	{electronics, "Button Switch", 5},
	{electronics, "Potentiometer 10K", 3},
	{electronics, "Reed Switch", 3},
	{electronics, "Round Magnet", 5},
}
