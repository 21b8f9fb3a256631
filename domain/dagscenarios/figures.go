package dagscenarios

import (
	"fmt"
)

// GenesisName is the name of the root of every built-in scenario.
const GenesisName = "Genesis"

func b(name string, parents ...string) Block {
	return Block{Name: name, Parents: parents}
}

// Fig3 is the DAG of figure 3 of the PHANTOM paper.
var Fig3 = Scenario{
	Name: "fig3",
	K:    3,
	Blocks: []Block{
		b(GenesisName),
		b("B", GenesisName),
		b("C", GenesisName),
		b("D", GenesisName),
		b("E", GenesisName),
		b("F", "B", "C"),
		b("H", "C", "D", "E"),
		b("I", "E"),
		b("J", "F", "H"),
		b("K", "B", "H", "I"),
		b("L", "D", "I"),
		b("N", "L", "K"),
		b("M", "F", "K"),
	},
}

// Fig4 is the DAG of figure 4 of the PHANTOM paper.
var Fig4 = Scenario{
	Name: "fig4",
	K:    3,
	Blocks: []Block{
		b(GenesisName),
		b("B", GenesisName),
		b("C", GenesisName),
		b("D", GenesisName),
		b("E", GenesisName),
		b("F", "B", "C"),
		b("H", "E"),
		b("I", "C", "D"),
		b("J", "F", "D"),
		b("K", "J", "I", "E"),
		b("L", "F"),
		b("N", "D", "H"),
		b("M", "L", "K"),
		b("O", "K"),
		b("P", "K"),
		b("Q", "N"),
		b("R", "O", "P", "N"),
		b("S", "Q"),
		b("T", "S"),
		b("U", "T"),
	},
}

// FigX1 is an irregular DAG, classified with k=0 so that only a chain can
// stay blue.
var FigX1 = Scenario{
	Name: "figX1",
	K:    0,
	Blocks: []Block{
		b(GenesisName),
		b("B", GenesisName),
		b("C", GenesisName),
		b("D", GenesisName),
		b("E", GenesisName),
		b("01", "B", "C", "D", "E"),
		b("02", "B", "E"),
		b("03", "B", "C", "D", "E"),
		b("04", "E"),
		b("05", "01", "04"),
		b("06", "01", "03", "04"),
		b("07", "01", "02"),
		b("08", "02", "03", "05"),
		b("09", "05", "06", "07"),
		b("10", "08", "09"),
		b("11", "08", "09"),
		b("12", "11"),
		b("13", "10", "11"),
		b("14", "13"),
		b("15", "12", "13"),
		b("16", "12", "14"),
		b("17", "15", "16"),
		b("18", "16"),
		b("19", "17", "18"),
		b("20", "17", "18"),
		b("21", "17"),
		b("22", "17", "18"),
		b("23", "17", "18"),
		b("24", "19", "23"),
		b("25", "23"),
		b("26", "23"),
		b("27", "20", "22", "24", "26"),
		b("28", "21", "22", "24"),
		b("29", "22", "24", "25", "26"),
		b("30", "21", "24", "25", "26"),
		b("31", "24"),
		b("32", "22", "25", "31"),
		b("33", "26", "31"),
		b("34", "22", "31"),
		b("35", "20", "26", "28", "34"),
		b("36", "20", "28", "30", "33", "34"),
		b("37", "32"),
		b("38", "20", "32", "33"),
		b("39", "32"),
		b("40", "21", "33", "37", "39"),
		b("41", "21", "26", "34", "37"),
		b("42", "27", "29", "36", "39", "41"),
		b("43", "28", "29", "33", "41"),
		b("44", "29", "32"),
		b("45", "27", "29", "36", "38", "40"),
	},
}

// FigX2 is nine layers of five blocks each, every block referring to the
// whole previous layer, classified with k=0.
var FigX2 = Scenario{
	Name:   "figX2",
	K:      0,
	Blocks: layers(9, 5),
}

// AnticoneExample is the beginning of Fig3 extended with M, without N.
var AnticoneExample = Scenario{
	Name: "anticone",
	K:    3,
	Blocks: []Block{
		b(GenesisName),
		b("B", GenesisName),
		b("C", GenesisName),
		b("D", GenesisName),
		b("E", GenesisName),
		b("F", "B", "C"),
		b("H", "C", "D", "E"),
		b("I", "E"),
		b("J", "F", "H"),
		b("K", "B", "H", "I"),
		b("L", "D", "I"),
		b("M", "F", "K"),
	},
}

// layers builds a root followed by layerCount layers of width blocks, named
// "01", "02" and so on, where every block refers to all blocks of the layer
// before it.
func layers(layerCount, width int) []Block {
	blocks := []Block{b(GenesisName)}
	previous := []string{GenesisName}
	for layer := 0; layer < layerCount; layer++ {
		current := make([]string, width)
		for i := range current {
			current[i] = fmt.Sprintf("%02d", layer*width+i+1)
			blocks = append(blocks, b(current[i], previous...))
		}
		previous = current
	}
	return blocks
}
